// Package platform wraps the OS integration points: login autostart, app
// activation and Dock visibility.
package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"

	"github.com/borgmon/lightwalker/pkg/logging"
)

const (
	AppName        = "lightwalker"
	AppDisplayName = "Lightwalker"
)

// Autostarter is the subset of autostart.App used to toggle login launch.
type Autostarter interface {
	IsEnabled() bool
	Enable() error
	Disable() error
}

// AutostartApp describes the running executable as a login item.
func AutostartApp() (*autostart.App, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable: %w", err)
	}
	return &autostart.App{
		Name:        AppName,
		DisplayName: AppDisplayName,
		Exec:        []string{execPath},
	}, nil
}

// SetupAutostart enables or disables launching at login for this executable.
func SetupAutostart(enable bool) error {
	app, err := AutostartApp()
	if err != nil {
		return err
	}
	return SyncAutostart(app, enable)
}

// SyncAutostart brings app in line with enable, doing nothing if it already matches.
func SyncAutostart(app Autostarter, enable bool) error {
	logger := logging.Component("autostart")

	if enable == app.IsEnabled() {
		return nil
	}
	if enable {
		if err := app.Enable(); err != nil {
			logger.Error().Err(err).Msg("Failed to enable autostart")
			return fmt.Errorf("failed to enable autostart: %w", err)
		}
		logger.Info().Msg("Autostart enabled")
		return nil
	}
	if err := app.Disable(); err != nil {
		logger.Error().Err(err).Msg("Failed to disable autostart")
		return fmt.Errorf("failed to disable autostart: %w", err)
	}
	logger.Info().Msg("Autostart disabled")
	return nil
}
