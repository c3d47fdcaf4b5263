// pkg/booking/client.go
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"gymbooker/pkg/log"
)

const (
	reserveEndpointPath     = "/portal/api/class/book"
	requestTimeout          = 30 * time.Second
	statusOKLiteral         = "OK"
	reservationSuccessCode  = 60
	successMessageFragment  = "reservation correctly made"
	waitlistMessageFragment = "waiting list"
	jsonContentTypeLiteral  = "application/json"
	ajaxRequestedWithHeader = "XMLHttpRequest"
)

// Outcome classifies the remote system's answer to a reservation request.
// Rejected covers both explicit refusals and unparseable responses.
type Outcome int

const (
	OutcomeRejected Outcome = iota
	OutcomeBooked
	OutcomeWaitlisted
)

func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeBooked:
		return "booked"
	case OutcomeWaitlisted:
		return "waitlisted"
	default:
		return "rejected"
	}
}

type reservationRequest struct {
	ClassID          int `json:"classId"`
	SecondaryBonusID int `json:"secondaryBonusId"`
}

type apiMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type reservationResponse struct {
	Status     string     `json:"status"`
	APIMessage apiMessage `json:"apiMessage"`
	Message    string     `json:"message"`
}

// CookieSource hands over the authenticated browser session's cookies so
// the reservation call rides the same session.
type CookieSource interface {
	Cookies() ([]*http.Cookie, error)
}

// Client submits reservation requests to the site's internal booking
// endpoint. One attempt per call, no retries.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	cookieSource CookieSource
}

func NewClient(baseURL string, cookieSource CookieSource) (*Client, error) {
	parsedBase, parseError := url.Parse(baseURL)
	if parseError != nil {
		return nil, fmt.Errorf("parsing base URL: %w", parseError)
	}
	jar, jarError := cookiejar.New(nil)
	if jarError != nil {
		return nil, jarError
	}
	return &Client{
		baseURL:      parsedBase,
		httpClient:   &http.Client{Jar: jar, Timeout: requestTimeout},
		cookieSource: cookieSource,
	}, nil
}

// Reserve books the class and interprets the response. A transport failure
// is an error; any response body, parseable or not, maps to an Outcome.
func (c *Client) Reserve(ctx context.Context, classID int, label string) (Outcome, error) {
	if c.cookieSource != nil {
		sessionCookies, cookieError := c.cookieSource.Cookies()
		if cookieError != nil {
			return OutcomeRejected, fmt.Errorf("exporting session cookies: %w", cookieError)
		}
		c.httpClient.Jar.SetCookies(c.baseURL, sessionCookies)
	}

	payloadBytes, marshalError := json.Marshal(reservationRequest{ClassID: classID, SecondaryBonusID: 0})
	if marshalError != nil {
		return OutcomeRejected, marshalError
	}

	request, requestError := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL.String()+reserveEndpointPath, bytes.NewReader(payloadBytes))
	if requestError != nil {
		return OutcomeRejected, requestError
	}
	request.Header.Set("Content-Type", jsonContentTypeLiteral)
	request.Header.Set("Accept", jsonContentTypeLiteral)
	request.Header.Set("X-Requested-With", ajaxRequestedWithHeader)

	response, doError := c.httpClient.Do(request)
	if doError != nil {
		return OutcomeRejected, fmt.Errorf("booking request: %w", doError)
	}
	defer response.Body.Close()

	bodyBytes, readError := io.ReadAll(response.Body)
	if readError != nil {
		return OutcomeRejected, fmt.Errorf("reading booking response: %w", readError)
	}

	outcome := Classify(bodyBytes)
	log.L().Info("reservation_result",
		zap.String("class", label),
		zap.Int("classId", classID),
		zap.Int("httpStatus", response.StatusCode),
		zap.String("outcome", outcome.String()),
	)
	return outcome, nil
}

// Classify maps the remote response body to an Outcome. The dual-condition
// success/waitlist matching mirrors the site's undocumented response shape;
// keep every change covered by the table test.
func Classify(body []byte) Outcome {
	var parsed reservationResponse
	if unmarshalError := json.Unmarshal(body, &parsed); unmarshalError != nil {
		return OutcomeRejected
	}

	loweredMessages := strings.ToLower(parsed.Message + " " + parsed.APIMessage.Message)
	statusOK := strings.EqualFold(parsed.Status, statusOKLiteral)
	hasSuccessCode := parsed.APIMessage.Code == reservationSuccessCode
	hasSuccessText := strings.Contains(loweredMessages, successMessageFragment)
	hasWaitlistText := strings.Contains(loweredMessages, waitlistMessageFragment)

	if statusOK && (hasSuccessCode || hasSuccessText) {
		return OutcomeBooked
	}
	if (statusOK || hasSuccessCode || hasWaitlistText) && (hasSuccessCode || hasWaitlistText) {
		return OutcomeWaitlisted
	}
	return OutcomeRejected
}
