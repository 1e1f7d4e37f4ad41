package cruddy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect/sql"
)

func TestActionString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action   cruddy.Action
		expected string
	}{
		{cruddy.ActionCreate, "create"},
		{cruddy.ActionEdit, "edit"},
		{cruddy.ActionDelete, "delete"},
		{cruddy.ActionView, "view"},
		{cruddy.Action("publish"), "publish"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.action.String())
		})
	}
}

func TestFilterTypeValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ft       cruddy.FilterType
		expected bool
	}{
		{cruddy.FilterNone, true},
		{cruddy.FilterString, true},
		{cruddy.FilterComplex, true},
		{cruddy.FilterType(""), false},
		{cruddy.FilterType("fuzzy"), false},
		{cruddy.FilterType("String"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.ft), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.ft.Valid())
			assert.Equal(t, string(tt.ft), tt.ft.String())
		})
	}
}

func TestFuncAdapters(t *testing.T) {
	t.Parallel()

	var tr cruddy.Translator = cruddy.TranslatorFunc(func(key string) (string, bool) {
		if key == "users.title" {
			return "Members", true
		}
		return "", false
	})
	s, ok := tr.Translate("users.title")
	assert.True(t, ok)
	assert.Equal(t, "Members", s)
	_, ok = tr.Translate("posts.title")
	assert.False(t, ok)

	var v cruddy.Validator = cruddy.ValidatorFunc(func(id string) any {
		if id == "password" {
			return "create"
		}
		return id == "name"
	})
	assert.Equal(t, "create", v.RequiredState("password"))
	assert.Equal(t, true, v.RequiredState("name"))
	assert.Equal(t, false, v.RequiredState("bio"))
}

func TestSelectorIsQuery(t *testing.T) {
	t.Parallel()

	var q cruddy.Query = sql.Select().From("users")
	q.Where(sql.FieldEQ("active", true))
	query, args := q.(*sql.Selector).Query()
	assert.Equal(t, "SELECT * FROM `users` WHERE `active` = ?", query)
	assert.Equal(t, []any{true}, args)
}
