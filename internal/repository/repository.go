package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., memory) inside this directory.

import "errors"

// ErrNotFound is returned when a registry entry does not exist.
var ErrNotFound = errors.New("registry: not found")
