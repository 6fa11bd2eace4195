package models

import "time"

// Character is a stored character record.
type Character struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	House     string    `db:"house" json:"house"`
	Age       int       `db:"age" json:"age"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CharacterDraft carries the mutable fields of a character.
type CharacterDraft struct {
	Name  string `db:"name" json:"name"`
	House string `db:"house" json:"house"`
	Age   int    `db:"age" json:"age"`
	Role  string `db:"role" json:"role"`
}

// Draft returns the mutable fields of the character.
func (c Character) Draft() CharacterDraft {
	return CharacterDraft{Name: c.Name, House: c.House, Age: c.Age, Role: c.Role}
}

// Pagination contains offset pagination metadata returned in list responses.
type Pagination struct {
	Skip     int `json:"skip"`
	Limit    int `json:"limit"`
	Total    int `json:"total"`
	Returned int `json:"returned"`
}
