package push

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
)

// FCM accepts at most this many tokens per multicast call.
const maxMulticastTokens = 500

type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Result sorts the tokens of a send by outcome. Failed only holds tokens FCM returned an
// error for; Unconfirmed holds tokens the batch response carried no outcome for.
type Result struct {
	Succeeded   []string
	Failed      []string
	Unconfirmed []string
}

type Sender interface {
	Send(ctx context.Context, tokens []string, msg Message) (Result, error)
}

// MulticastClient is the part of *messaging.Client the dispatcher uses.
type MulticastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type Dispatcher struct {
	client MulticastClient
}

var _ Sender = (*Dispatcher)(nil)

func New(client MulticastClient) *Dispatcher {
	return &Dispatcher{client: client}
}

// Send delivers msg to every token without retrying. Tokens are sent in chunks of the
// FCM multicast limit. A chunk whose call fails outright reports none of its tokens,
// since the failure says nothing about them; the error is returned once the remaining
// chunks were attempted.
func (d *Dispatcher) Send(ctx context.Context, tokens []string, msg Message) (Result, error) {
	result := Result{}
	if len(tokens) == 0 {
		return result, fmt.Errorf("send push: no tokens")
	}

	var sendErr error
	for start := 0; start < len(tokens); start += maxMulticastTokens {
		chunk := tokens[start:min(start+maxMulticastTokens, len(tokens))]

		resp, err := d.client.SendEachForMulticast(ctx, multicast(chunk, msg))
		if err != nil {
			log.Error().Err(err).Int("tokens", len(chunk)).Msg("push: multicast failed")
			sendErr = fmt.Errorf("send push: %w", err)
			continue
		}

		if len(resp.Responses) != len(chunk) {
			log.Warn().Int("tokens", len(chunk)).Int("responses", len(resp.Responses)).Msg("push: batch response does not match the tokens sent")
		}
		for i, token := range chunk {
			var r *messaging.SendResponse
			if i < len(resp.Responses) {
				r = resp.Responses[i]
			}
			switch {
			case r != nil && r.Success:
				result.Succeeded = append(result.Succeeded, token)
			case r != nil && r.Error != nil:
				log.Debug().Err(r.Error).Msg("push: token rejected")
				result.Failed = append(result.Failed, token)
			default:
				result.Unconfirmed = append(result.Unconfirmed, token)
			}
		}
	}

	log.Debug().Msgf("push: %d succeeded, %d failed, %d unconfirmed", len(result.Succeeded), len(result.Failed), len(result.Unconfirmed))
	return result, sendErr
}

func multicast(tokens []string, msg Message) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Data:   msg.Data,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}
