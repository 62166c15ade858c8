// Package models holds the JSON shapes returned by the API.
package models

import "github.com/jon4hz/recipebox/internal/database"

// Tag is the public representation of a tag.
type Tag struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Ingredient is the public representation of an ingredient.
type Ingredient struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// User is the public representation of an account. The password is never part of it.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ToTag converts a database.Tag to its API shape.
func ToTag(t database.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name}
}

// ToIngredient converts a database.Ingredient to its API shape.
func ToIngredient(i database.Ingredient) Ingredient {
	return Ingredient{ID: i.ID, Name: i.Name}
}

// ToUser converts a database.User to its API shape.
func ToUser(u *database.User) User {
	return User{Email: u.Email, Name: u.Name}
}
