package models

import (
	"time"
)

type User struct {
	ID           uint         `gorm:"primaryKey;autoIncrement"  json:"id"`
	FirstName    string       `gorm:"not null"                  json:"firstName"`
	LastName     string       `gorm:"not null"                  json:"lastName"`
	Username     string       `gorm:"unique;not null"           json:"username"`
	MobileNumber string       `json:"mobileNumber"`
	Email        string       `gorm:"unique;not null"           json:"email"`
	PasswordHash string       `gorm:"not null"                  json:"-"`
	Roles        []Role       `gorm:"many2many:user_roles"      json:"roles,omitempty"`
	Internships  []Internship `json:"internships,omitempty"`
}

// RoleNames returns the names of whatever roles are loaded on the user.
func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

type Role struct {
	ID          uint         `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string       `gorm:"unique;not null"           json:"name"`
	Permissions []Permission `gorm:"many2many:role_permission" json:"permissions,omitempty"`
}

type Permission struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
}

type Internship struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JoinedDate     time.Time `gorm:"not null"                 json:"joinedDate"`
	CompletionDate time.Time `json:"completionDate"`
	IsCertified    bool      `json:"isCertified"`
	MentorName     string    `gorm:"not null"                 json:"mentorName"`
	UserID         uint      `gorm:"index;not null"           json:"user_id"`
}
