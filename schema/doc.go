// Package schema groups the building blocks of entity schemas:
//
//   - [attribute]: the named, configurable node fields are built on
//   - [field]: field descriptors and the built-in field kinds
//   - [entity]: the schema node owning fields, validator and translator
//   - [mixin]: reusable field sets
//
// # Quick Start
//
//	users := entity.MustNew("users",
//	    entity.WithValidator(validation.New().
//	        MustSet("email", "required|email|max:255").
//	        MustSet("password", "required@create|min:8")),
//	    entity.WithFields(append(mixin.Fields(mixin.Time{}),
//	        field.Primary("id"),
//	        field.Email("email").Unique(),
//	        field.String("password").FilterAs(cruddy.FilterNone),
//	        field.Enum("status", "active", "suspended"),
//	    )...),
//	)
//
// Entities are usually declared in YAML and loaded with the config package.
package schema
