package audio

import (
	"errors"
	"fmt"
	"log/slog"
)

// BackendFactory creates Backend instances. The player uses it both for the
// shared output context (one backend per loader) and for one-shot contexts
// (a fresh backend per trigger).
type BackendFactory interface {
	CreateBackend(backendType string) (Backend, error)
	SupportedBackends() []string
	IsValidBackendType(backendType string) bool
}

// Factory errors
var (
	ErrInvalidBackendType    = errors.New("invalid backend type")
	ErrBackendCreationFailed = errors.New("backend creation failed")
)

// DefaultBackendFactory implements BackendFactory with platform detection
type DefaultBackendFactory struct {
	isWSLFunc     func() bool
	commandExists func(string) bool
}

// NewBackendFactory creates a factory with real platform detection
func NewBackendFactory() *DefaultBackendFactory {
	return &DefaultBackendFactory{
		isWSLFunc:     IsWSL,
		commandExists: CommandExists,
	}
}

// NewBackendFactoryWithDependencies creates a factory with injected platform
// checks for testing
func NewBackendFactoryWithDependencies(isWSLFunc func() bool, commandExists func(string) bool) *DefaultBackendFactory {
	return &DefaultBackendFactory{
		isWSLFunc:     isWSLFunc,
		commandExists: commandExists,
	}
}

// CreateBackend creates a Backend instance of the specified type. Empty
// string means "auto".
func (f *DefaultBackendFactory) CreateBackend(backendType string) (Backend, error) {
	if backendType == "" {
		backendType = "auto"
	}

	slog.Debug("creating audio backend", "type", backendType)

	switch backendType {
	case "auto":
		return f.createAutoBackend()
	case "malgo":
		return NewMalgoBackend(), nil
	case "oto":
		return NewOtoBackend(), nil
	case "beep":
		return NewBeepBackend(), nil
	case "system_command":
		return f.createSystemCommandBackend()
	default:
		slog.Error("invalid backend type requested", "type", backendType)
		return nil, fmt.Errorf("%w: %s", ErrInvalidBackendType, backendType)
	}
}

// SupportedBackends returns all supported backend types
func (f *DefaultBackendFactory) SupportedBackends() []string {
	return []string{"auto", "malgo", "oto", "beep", "system_command"}
}

// IsValidBackendType checks if a backend type is supported. Empty string is
// valid and defaults to auto.
func (f *DefaultBackendFactory) IsValidBackendType(backendType string) bool {
	if backendType == "" {
		return true
	}
	for _, supported := range f.SupportedBackends() {
		if backendType == supported {
			return true
		}
	}
	return false
}

func (f *DefaultBackendFactory) createAutoBackend() (Backend, error) {
	selected := detectOptimalBackendWithChecker(f.isWSLFunc(), f.commandExists)
	slog.Debug("auto-detection result", "selected_type", selected)

	switch selected {
	case "system_command":
		return f.createSystemCommandBackend()
	case "malgo":
		return NewMalgoBackend(), nil
	default:
		return nil, fmt.Errorf("%w: auto-detection failed", ErrBackendCreationFailed)
	}
}

func (f *DefaultBackendFactory) createSystemCommandBackend() (Backend, error) {
	command := getPreferredSystemCommandWithChecker(f.commandExists)
	if command == "" {
		slog.Error("no system audio commands available")
		return nil, fmt.Errorf("%w: no system audio commands found", ErrBackendNotAvailable)
	}
	return NewSystemCommandBackend(command), nil
}
