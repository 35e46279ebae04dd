package nats

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

func encodeExchange(exchange domain.MentorExchange) ([]byte, error) {
	payload, err := json.Marshal(exchange)
	if err != nil {
		return nil, fmt.Errorf("encode exchange: %w", err)
	}
	return payload, nil
}

func decodeExchange(data []byte) (domain.MentorExchange, error) {
	var exchange domain.MentorExchange
	if err := json.Unmarshal(data, &exchange); err != nil {
		return domain.MentorExchange{}, fmt.Errorf("decode exchange: %w", err)
	}
	if exchange.ID == "" || exchange.UserID == "" || exchange.CourseID == "" {
		return domain.MentorExchange{}, errors.New("decode exchange: id, user_id and course_id are required")
	}
	return exchange, nil
}
