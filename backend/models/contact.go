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
	"regexp"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/pkg/errors"
)

// ContactMethod is the channel a contact is reached on
type ContactMethod string

const (
	MethodWinkDrops ContactMethod = "WinkDrops"
	MethodPhone     ContactMethod = "Phone"
	MethodEmail     ContactMethod = "Email"
	MethodInstagram ContactMethod = "Instagram"
	MethodX         ContactMethod = "X"
	MethodSnapchat  ContactMethod = "Snapchat"
	MethodTikTok    ContactMethod = "TikTok"
	MethodFacebook  ContactMethod = "Facebook"
	MethodLinkedIn  ContactMethod = "LinkedIn"
)

func (m ContactMethod) Valid() bool {
	switch m {
	case MethodWinkDrops, MethodPhone, MethodEmail, MethodInstagram, MethodX,
		MethodSnapchat, MethodTikTok, MethodFacebook, MethodLinkedIn:
		return true
	}
	return false
}

type Contact struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Method    ContactMethod `json:"method"`
	Handle    string        `json:"handle"`
	Location  string        `json:"location,omitempty"`
	IsBlocked bool          `json:"isBlocked,omitempty"`
}

// ContactKey is the identity used to deduplicate contacts. Two contacts
// with the same name and handle are the same person regardless of ID.
type ContactKey struct {
	Name   string
	Handle string
}

func (c Contact) Key() ContactKey {
	return ContactKey{Name: c.Name, Handle: c.Handle}
}

var phoneFormatting = regexp.MustCompile(`[\s\-()]`)
var digitsOnly = regexp.MustCompile(`^\d+$`)

// Validate checks the required fields and the handle format for
// email and phone contacts
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(c.Handle) == "" {
		return errors.New("handle is required")
	}
	if !c.Method.Valid() {
		return errors.Errorf("unknown contact method %q", c.Method)
	}

	switch c.Method {
	case MethodEmail:
		if err := checkmail.ValidateFormat(c.Handle); err != nil {
			return errors.Wrap(err, "please enter a valid email address")
		}
	case MethodPhone:
		if !digitsOnly.MatchString(phoneFormatting.ReplaceAllString(c.Handle, "")) {
			return errors.New("phone number can only contain digits")
		}
	}
	return nil
}
