package services

import (
	"log"
	"os"

	"eldercare/internal/apperr"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSResult is the provider's receipt for one message.
type SMSResult struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// SMSSender is the gateway surface the dispatch paths use. A send failure
// is a per-recipient soft failure, never an abort signal for a batch.
type SMSSender interface {
	Send(to, body string) (*SMSResult, error)
}

// SMSService sends SMS through Twilio.
type SMSService struct {
	client *twilio.RestClient
	from   string
}

// NewSMSService reads Twilio credentials from the environment. Returns nil
// when the gateway is not configured; callers treat a nil sender as
// "SMS disabled".
func NewSMSService() *SMSService {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_FROM")

	if sid == "" || token == "" || from == "" {
		log.Println("Twilio not configured (TWILIO_ACCOUNT_SID/TWILIO_AUTH_TOKEN/TWILIO_FROM), SMS delivery disabled")
		return nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: sid,
		Password: token,
	})
	return &SMSService{client: client, from: from}
}

// Send delivers one message. Provider rejections (e.g. an unverified
// recipient on a sandboxed account) surface as GatewayError.
func (s *SMSService) Send(to, body string) (*SMSResult, error) {
	if to == "" {
		return nil, apperr.Validationf("missing recipient phone number")
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return nil, &apperr.GatewayError{To: to, Err: err}
	}

	result := &SMSResult{}
	if msg.Sid != nil {
		result.SID = *msg.Sid
	}
	if msg.Status != nil {
		result.Status = *msg.Status
	}
	return result, nil
}
