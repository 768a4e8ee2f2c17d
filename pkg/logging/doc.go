// Package logging provides structured logging configuration for hydra.
//
// It wraps log/slog so every component logs the same way:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//	logger.Info("server started", "addr", ":3000")
//
// Components accept a *slog.Logger in their constructor or through an
// option and fall back to Nop() when none is given.
//
// Setting Config.File additionally writes JSON records of every level to
// that file, so a session trace keeps debug detail while the console stays
// at the configured level.
package logging
