// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account that owns short links.
// PasswordHash is never serialized into API responses or logs.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
