package models

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the given key
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when the store rejects a duplicate username or email
	ErrUserExists = errors.New("user already exists")
	// ErrUsernameTaken is returned by registration when the username is in use
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken is returned by registration when the email is in use
	ErrEmailTaken = errors.New("email already registered")
	// ErrPasswordTooLong is returned by registration for a password bcrypt cannot hash
	ErrPasswordTooLong = errors.New("password too long")
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountInactive is returned when a deactivated account tries to log in
	ErrAccountInactive = errors.New("account is deactivated")
	// ErrSelfAction is returned when an admin targets their own account
	ErrSelfAction = errors.New("action not allowed on own account")
	// ErrSessionNotFound is returned when a session id is unknown or expired
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidDimensions is returned for negative or non-finite rectangle sides
	ErrInvalidDimensions = errors.New("invalid rectangle dimensions")
	// ErrCityNotFound is returned when geocoding yields no result
	ErrCityNotFound = errors.New("city not found")
	// ErrWeatherUnavailable is returned when a weather service call fails or returns an unexpected body
	ErrWeatherUnavailable = errors.New("weather data unavailable")
)
