package config

// DefaultProfile returns a profile with default values.
func DefaultProfile() *Profile {
	return &Profile{
		Timeout:         30000, // 30 seconds
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		Proxy:           "",
		Headers:         nil,
	}
}
