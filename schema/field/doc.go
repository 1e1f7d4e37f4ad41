// Package field provides the field descriptors of an admin panel entity.
//
// A field descriptor describes one attribute of a record: the label shown
// for it, how its value is read for forms and list columns, how submitted
// input is converted before storage, how list filters constrain a query, and
// for which actions the value is sent to the repository.
//
//	field.Primary("id")
//	field.String("name").Required()
//	field.Email("email").Label("E-mail").Unique()
//	field.Text("bio").Truncate(120)
//	field.Bool("active")
//	field.Integer("age").Optional()
//	field.Enum("status", "draft", "published")
//	field.DateTime("created_at").DisableFor(cruddy.ActionCreate)
//	field.UUID("token").Disable()
//	field.Computed("full_name", func(r cruddy.Record) any { ... })
//
// # Labels
//
// The display label is resolved in order: the explicit label (translated
// when the owner has a message for it), the owner messages
// "{entity}.fields.{id}" and "fields.{id}", and finally the humanized id,
// so "first_name" becomes "First name".
//
// # Requirement
//
// Required and Optional override the owner validator. Without an explicit
// setting the validator's required state is reported unchanged, which may
// be a bool or a validator specific flag.
//
// # Disablement
//
// A field is enabled by default. Disable disables it for every action and
// DisableFor for a single action. Disabled fields are not sent to the
// repository for the actions they are disabled for.
//
// # Filters
//
// Each kind declares a filter type: "none" fields are skipped, "string"
// fields take a free-text search and "complex" fields take structured data
// such as {"from": 1, "to": 9} ranges or value lists. Filter data that does
// not fit the kind is ignored.
package field
