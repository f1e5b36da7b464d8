package apiclient

import "net/http"

// Describe turns err into a short title and description fit for showing to
// a user.
func Describe(err error) (title, description string) {
	ae, ok := AsAPIError(err)
	if !ok {
		if err == nil {
			return "", ""
		}
		return "Error", err.Error()
	}
	switch {
	case ae.Status == http.StatusUnauthorized:
		return "Authentication Failed", "Your session has expired. Please login again."
	case ae.Status == http.StatusForbidden:
		return "Access Denied", "You don't have permission to perform this action."
	case ae.Status == http.StatusNotFound:
		return "Resource Not Found", "The requested resource was not found."
	case ae.Status == http.StatusInternalServerError:
		return "Server Error", "An internal server error occurred. Please try again later."
	case ae.Code == CodeNoResponse:
		return "Connection Error", "Unable to connect to the server. Please check your internet connection."
	}
	if ae.Message == "" {
		return "Error", "An unexpected error occurred"
	}
	return "Error", ae.Message
}
