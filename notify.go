package main

import (
	"github.com/gen2brain/beeep"
)

const appName = "adSTTS"

// notifyUser shows a desktop notification unless disabled in config.
func notifyUser(title, message string) {
	if cfg == nil || !cfg.Notify() {
		return
	}
	if err := beeep.Notify(appName+": "+title, message, ""); err != nil {
		logger.Debug("failed to send notification", "error", err)
	}
}
