package models

import (
	"time"

	"gorm.io/datatypes"
)

// MaterialKind distinguishes the two stored-material tables.
type MaterialKind string

const (
	KindHomework MaterialKind = "homework"
	KindNote     MaterialKind = "note"
)

// Material is the shared shape of homework assignments and study notes: a named
// record owned by one user with an ordered list of stored-file paths. Homework
// and Note embed it so the repositories and services can be written once and
// instantiated per table.
type Material struct {
	ID     uint                        `json:"id" gorm:"primaryKey"`
	Name   string                      `json:"name" gorm:"not null;size:255" validate:"required,max=255"`
	UserID uint                        `json:"user_id" gorm:"not null;index"`
	Files  datatypes.JSONSlice[string] `json:"files"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`

	User User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Record gives generic code access to the embedded Material of a concrete row.
func (m *Material) Record() *Material { return m }

type Homework struct {
	Material
}

func (Homework) TableName() string {
	return "homework"
}

type Note struct {
	Material
}

func (Note) TableName() string {
	return "notes"
}

// MaterialPtr constrains generic repositories and services to pointers to the
// two material tables.
type MaterialPtr[T any] interface {
	*T
	Record() *Material
	TableName() string
}
