package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/server/storage"
	"github.com/vkuzmenko/wardsync/pkg/api"
)

// DeviceHandler обрабатывает регистрацию устройств и выдачу токенов
type DeviceHandler struct {
	logger            *slog.Logger
	deviceStorage     storage.DeviceStorage
	jwtConfig         JWTConfig
	enrollmentKeyHash []byte // bcrypt хеш общего ключа регистрации
}

// NewDeviceHandler создает новый handler для устройств
func NewDeviceHandler(logger *slog.Logger, deviceStorage storage.DeviceStorage, jwtConfig JWTConfig, enrollmentKeyHash []byte) *DeviceHandler {
	return &DeviceHandler{
		logger:            logger,
		deviceStorage:     deviceStorage,
		jwtConfig:         jwtConfig,
		enrollmentKeyHash: enrollmentKeyHash,
	}
}

// Enroll обрабатывает POST /api/v1/devices/enroll
// Регистрация нового устройства по ключу регистрации
func (h *DeviceHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode enroll request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.DeviceName == "" {
		h.sendError(w, "device_name is required", http.StatusBadRequest)
		return
	}
	if req.EnrollmentKey == "" {
		h.sendError(w, "enrollment_key is required", http.StatusBadRequest)
		return
	}

	// Проверяем ключ регистрации по bcrypt хешу
	if err := bcrypt.CompareHashAndPassword(h.enrollmentKeyHash, []byte(req.EnrollmentKey)); err != nil {
		h.logger.WarnContext(ctx, "enrollment rejected: invalid key",
			slog.String("device_name", req.DeviceName))
		h.sendError(w, "invalid enrollment key", http.StatusUnauthorized)
		return
	}

	deviceID := uuid.New().String()

	secret, err := GenerateDeviceSecret()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate device secret", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash device secret", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	device := &models.Device{
		ID:         deviceID,
		Name:       req.DeviceName,
		SecretHash: string(secretHash),
		CreatedAt:  now,
		LastSeenAt: now,
	}

	if err := h.deviceStorage.CreateDevice(ctx, device); err != nil {
		h.logger.ErrorContext(ctx, "failed to create device", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "device enrolled",
		slog.String("device_id", deviceID),
		slog.String("device_name", req.DeviceName))

	resp := api.EnrollResponse{
		DeviceID:     deviceID,
		DeviceSecret: secret,
	}

	h.sendJSON(w, resp, http.StatusCreated)
}

// Token обрабатывает POST /api/v1/devices/token
// Выдача access token по секрету устройства
func (h *DeviceHandler) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode token request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.DeviceID == "" || req.DeviceSecret == "" {
		h.sendError(w, "device_id and device_secret are required", http.StatusBadRequest)
		return
	}

	device, err := h.deviceStorage.GetDevice(ctx, req.DeviceID)
	if err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			h.logger.WarnContext(ctx, "token rejected: device not found",
				slog.String("device_id", req.DeviceID))
			h.sendError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get device", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(device.SecretHash), []byte(req.DeviceSecret)); err != nil {
		h.logger.WarnContext(ctx, "token rejected: invalid secret",
			slog.String("device_id", req.DeviceID))
		h.sendError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	accessToken, expiresIn, err := GenerateAccessToken(h.jwtConfig, device.ID, device.Name)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.deviceStorage.UpdateLastSeen(ctx, device.ID, time.Now()); err != nil {
		// Не критичная ошибка, логируем но не прерываем
		h.logger.WarnContext(ctx, "failed to update last seen", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "access token issued",
		slog.String("device_id", device.ID))

	resp := api.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// sendJSON отправляет JSON ответ
func (h *DeviceHandler) sendJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h *DeviceHandler) sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(api.ErrorResponse{Error: message}); err != nil {
		h.logger.Error("failed to encode error response", slog.Any("error", err))
	}
}
