package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MrEthical07/verifact"
)

type errorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: true, Message: message})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// otpCode accepts a code sent as a JSON string or a bare number. A number
// keeps its literal digits, so 012345 cannot be sent that way.
type otpCode string

func (c *otpCode) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*c = otpCode(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = otpCode(s)
	return nil
}

// validationMessage returns the human part of an ErrValidation chain. The
// engine authors these texts for end users.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), verifact.ErrValidation.Error()+": ")
	if msg == err.Error() || msg == "" {
		return "Invalid request"
	}
	return msg
}

// recoveryStatus maps OTP and notification failures. Missing, wrong and
// expired codes surface as 500.
func recoveryStatus(err error) (int, string) {
	switch verifact.KindOf(err) {
	case verifact.KindValidation:
		return http.StatusBadRequest, validationMessage(err)
	case verifact.KindRateLimited:
		return http.StatusTooManyRequests, "Too many requests"
	case verifact.KindOTPNotFound:
		return http.StatusInternalServerError, "OTP not found"
	case verifact.KindOTPWrongCode:
		return http.StatusInternalServerError, "Invalid OTP"
	case verifact.KindOTPExpired:
		return http.StatusInternalServerError, "OTP expired"
	case verifact.KindDeliveryFailure:
		return http.StatusInternalServerError, "Could not send email"
	case verifact.KindUserNotFound:
		return http.StatusInternalServerError, "User not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
