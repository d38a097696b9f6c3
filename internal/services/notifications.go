package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/medibook/booking-api/internal/models"
)

// NotificationService sends booking and cancellation SMS through Textbelt.
// Delivery is best-effort and never blocks the request path.
type NotificationService struct {
	apiKey string
	log    *zap.Logger
}

func NewNotificationService(apiKey string, log *zap.Logger) *NotificationService {
	return &NotificationService{apiKey: apiKey, log: log}
}

// NotifyBooked confirms a new booking to the patient.
func (s *NotificationService) NotifyBooked(apt *models.Appointment) {
	body := fmt.Sprintf(
		"Appointment booked: %s (%s) on %s at %s.",
		apt.DocData.Name,
		apt.DocData.Speciality,
		apt.SlotDate,
		apt.SlotTime,
	)
	s.send(apt.UserData.Phone, body)
}

// NotifyCancelled tells the patient their appointment was cancelled.
func (s *NotificationService) NotifyCancelled(apt *models.Appointment) {
	body := fmt.Sprintf(
		"Appointment cancelled: %s on %s at %s.",
		apt.DocData.Name,
		apt.SlotDate,
		apt.SlotTime,
	)
	s.send(apt.UserData.Phone, body)
}

func (s *NotificationService) send(phone, message string) {
	if phone == "" {
		s.log.Debug("sms skipped: no phone number on record")
		return
	}
	// Fire and forget so the API response is not held up by Textbelt.
	go s.sendWithTextbelt(phone, message)
}

func (s *NotificationService) sendWithTextbelt(phone, message string) {
	postBody, _ := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})

	resp, err := http.Post("https://textbelt.com/text", "application/json", bytes.NewBuffer(postBody))
	if err != nil {
		s.log.Warn("textbelt request failed", zap.String("phone", phone), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		s.log.Warn("textbelt response unreadable", zap.Error(err))
		return
	}

	if success, _ := result["success"].(bool); !success {
		errorMsg, _ := result["error"].(string)
		s.log.Warn("textbelt rejected sms", zap.String("phone", phone), zap.String("reason", errorMsg))
		return
	}
	s.log.Info("sms sent", zap.String("phone", phone))
}
