package validator

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"invoicerecon/internal/config"
	"invoicerecon/internal/logger"
)

// Validator normalizes extracted fields against a jurisdiction profile.
// It is safe for concurrent use.
type Validator struct {
	profile     *config.Jurisdiction
	gst         *regexp.Regexp
	phone       *regexp.Regexp
	phoneDigits *regexp.Regexp
	dates       []*regexp.Regexp
	noise       []*regexp.Regexp
	stateCodes  map[string]bool
	log         zerolog.Logger
}

// New compiles the profile's patterns once.
func New(profile *config.Jurisdiction, log zerolog.Logger) (*Validator, error) {
	v := &Validator{
		profile:    profile,
		stateCodes: make(map[string]bool, len(profile.StateCodes)),
		log:        logger.Component(log, "validator"),
	}
	var err error
	if v.gst, err = regexp.Compile(profile.Patterns.GST); err != nil {
		return nil, fmt.Errorf("compiling gst pattern: %w", err)
	}
	if v.phone, err = regexp.Compile(profile.Patterns.Phone); err != nil {
		return nil, fmt.Errorf("compiling phone pattern: %w", err)
	}
	if v.phoneDigits, err = regexp.Compile(profile.Patterns.PhoneDigits); err != nil {
		return nil, fmt.Errorf("compiling phone digits pattern: %w", err)
	}
	for _, p := range profile.Patterns.Dates {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling date pattern %q: %w", p, err)
		}
		v.dates = append(v.dates, re)
	}
	for _, p := range profile.Patterns.DescriptionNoise {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling description pattern %q: %w", p, err)
		}
		v.noise = append(v.noise, re)
	}
	for _, code := range profile.StateCodes {
		v.stateCodes[code] = true
	}
	return v, nil
}
