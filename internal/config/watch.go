package config

import (
	"context"
	"path/filepath"

	"go-plant-inspector/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// WatchProfile monitors path and calls onChange with the newly loaded
// Profile each time the file is written or replaced. It runs until ctx is
// cancelled. A profile that fails to load is logged and the previous one
// stays active.
func WatchProfile(ctx context.Context, path string, onChange func(*Profile)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	target = filepath.Clean(target)

	// The directory watch survives saves that rename a temp file over the profile.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	logger.WithField("path", target).Info("Watching analyzer profile for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isProfileUpdate(event, target) {
				continue
			}

			profile, err := LoadProfile(target)
			if err != nil {
				logger.WithError(err).WithField("path", target).
					Error("Profile reload failed, keeping previous profile")
				continue
			}

			logger.WithFields(logrus.Fields{
				"path":          target,
				"sample_stride": profile.SampleStride,
				"base_mode":     profile.BaseMode,
			}).Info("Analyzer profile reloaded")
			onChange(profile)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Error("Profile watcher error")
		}
	}
}

// isProfileUpdate reports whether event left new content at target.
// A rename onto target arrives as Create.
func isProfileUpdate(event fsnotify.Event, target string) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || filepath.Clean(name) != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
