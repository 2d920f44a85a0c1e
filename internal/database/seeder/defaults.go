package seeder

import (
	"classifieds/internal/domain/access"
	"classifieds/internal/domain/user"
)

// DevUsers are the accounts a fresh development database starts with.
func DevUsers() []user.User {
	return []user.User{
		NewDevUser("admin@classifieds.local", "Dev Admin", access.RoleAdmin),
		NewDevUser("owner@classifieds.local", "Dev Owner", access.RoleUser),
		NewDevUser("applicant@classifieds.local", "Dev Applicant", access.RoleUser),
	}
}

func Defaults() []Seeder {
	return []Seeder{UsersSeeder{Users: DevUsers()}}
}
