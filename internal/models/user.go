// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator account for the job-trigger admin surface — the
// narrow external collaborator the core needs to be runnable (see
// SPEC_FULL.md "Supplemented features"). There is no role hierarchy:
// anyone who can log in can submit and inspect render jobs.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	TOTPSecret   *string
	TOTPEnabled  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Needs2FASetup reports whether the operator has not yet enrolled TOTP.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}
