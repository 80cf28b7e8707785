package backend

// Config holds configuration for the portal REST backend.
type Config struct {
	// BaseURL is the portal origin, e.g. https://portal.example.com.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:8000"`
	// CompaniesPath is the paginated company listing endpoint.
	CompaniesPath string `mapstructure:"companies_path" default:"/api/empresas"`
	// SessionCookie is the name of the portal's session cookie.
	SessionCookie string `mapstructure:"session_cookie" default:"portal_grs_session"`
	// SessionToken seeds the session cookie when no login is performed.
	SessionToken string `mapstructure:"session_token" default:""`
	// SelectionCookie is the cookie the portal stores the active company in.
	SelectionCookie string `mapstructure:"selection_cookie" default:"selected_company"`
	// SelectedCompany seeds the selection cookie with a company id.
	SelectedCompany string `mapstructure:"selected_company" default:""`
	// Username is the login e-mail used when SessionToken is empty.
	Username string `mapstructure:"username" default:""`
	// Password is the login password.
	Password string `mapstructure:"password" default:""`
	// TimeoutSeconds bounds each request. 0 leaves requests unbounded.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RequestsPerSecond paces outgoing requests. 0 disables pacing.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"0"`
}

// HasCredentials reports whether a login can be attempted.
func (c Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
