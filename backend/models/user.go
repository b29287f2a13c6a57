// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package models

import (
	"time"
)

type Consents struct {
	ContactSync    bool `json:"contactSync"`
	PersonalizedAI bool `json:"personalizedAI"`
	DataAnalytics  bool `json:"dataAnalytics"`
}

// DefaultConsents is what every new account starts with
func DefaultConsents() Consents {
	return Consents{ContactSync: true, PersonalizedAI: true, DataAnalytics: true}
}

type User struct {
	ID         string   `json:"id" db:"user_id"`
	Name       string   `json:"name" db:"name"`
	Email      string   `json:"email" db:"email"`
	MFAEnabled bool     `json:"mfaEnabled" db:"mfa_enabled"`
	Consents   Consents `json:"consents" db:"consents"`
}

// Account is a stored user with its password hash. The hash never leaves
// the storage layer.
type Account struct {
	User
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
