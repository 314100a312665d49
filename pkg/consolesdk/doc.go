// Package consolesdk is the HTTP client of the admin console.
//
// Every request except the liveness probe passes through a fixed pipeline
// of three stages:
//
//	attachAuth     - adds "Authorization: Bearer <token>" when logged in
//	renewOnSuccess - schedules a background token renewal after any 2xx
//	                 response other than /auth/renew itself
//	logoutOn401    - destroys the session and navigates to login on 401
//
// The response stages have finished before a call returns, so callers see
// a 401 as an *APIError matching ErrUnauthorized with the session already
// gone.
//
// Example usage:
//
//	client := consolesdk.NewClient(consolesdk.Config{
//		BaseURL: "http://localhost:8080/api",
//	}, sessions, consolesdk.NavigatorFunc(showLogin))
//	defer client.Close()
//
//	if err := client.Login(ctx, consolesdk.LoginRequest{Email: e, Password: p}); err != nil {
//		fmt.Println(consolesdk.MessageOr(err, "Login fehlgeschlagen"))
//	}
//
//	var users []User
//	err := client.GetJSON(ctx, "/users", &users)
package consolesdk
