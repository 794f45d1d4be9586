package ai

import (
	"errors"
	"net/http"
	"strings"

	"codeberg.org/snonux/lexiforge/internal/apierr"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ClassifyError converts a genai, go-openai or transport error into one of
// the apierr kinds
func ClassifyError(provider string, err error) error {
	return classify(provider, err)
}

func classify(provider string, err error) error {
	if err == nil {
		return nil
	}

	var kindAuth *apierr.AuthenticationError
	var kindReq *apierr.RequestError
	if errors.As(err, &kindAuth) || errors.As(err, &kindReq) {
		return err
	}

	var gerr genai.APIError
	if errors.As(err, &gerr) {
		return fromStatus(provider, gerr.Code, gerr.Message, err)
	}
	var gerrPtr *genai.APIError
	if errors.As(err, &gerrPtr) && gerrPtr != nil {
		return fromStatus(provider, gerrPtr.Code, gerrPtr.Message, err)
	}

	var oerr *openai.APIError
	if errors.As(err, &oerr) {
		return fromStatus(provider, oerr.HTTPStatusCode, oerr.Message, err)
	}
	var rerr *openai.RequestError
	if errors.As(err, &rerr) {
		return fromStatus(provider, rerr.HTTPStatusCode, string(rerr.Body), err)
	}

	return &apierr.RequestError{Provider: provider, Err: err}
}

func fromStatus(provider string, status int, message string, err error) error {
	if status == http.StatusBadRequest && mentionsAPIKey(message) {
		return &apierr.AuthenticationError{Provider: provider, Err: err}
	}
	return apierr.FromStatus(provider, status, err)
}

func mentionsAPIKey(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "api key") || strings.Contains(m, "api_key")
}
