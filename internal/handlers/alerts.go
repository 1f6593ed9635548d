package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"cryptotracker/internal/cache"
	"cryptotracker/internal/logger"
	"cryptotracker/internal/models"
	"cryptotracker/internal/store"
)

const tracerName = "crypto-tracker"

const browseCachePrefix = "browse_alerts_"

type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type CreateAlertRequest struct {
	CryptoSymbol string   `json:"crypto_symbol" validate:"required"`
	CryptoName   string   `json:"crypto_name" validate:"required"`
	Threshold    float64  `json:"threshold" validate:"required,gt=0"`
	IsUpperBound bool    `json:"is_upper_bound"`
	IsEnabled    *bool   `json:"is_enabled,omitempty"`
}

type UpdateAlertRequest struct {
	CryptoSymbol string   `json:"crypto_symbol,omitempty"`
	CryptoName   string   `json:"crypto_name,omitempty"`
	Threshold    *float64 `json:"threshold,omitempty" validate:"omitempty,gt=0"`
	IsUpperBound *bool    `json:"is_upper_bound,omitempty"`
	IsEnabled    *bool    `json:"is_enabled,omitempty"`
}

// Alerts serves the alert CRUD API over the configured store. The Redis
// response cache is optional; without it every request hits the store.
type Alerts struct {
	store    store.Store
	cache    *cache.Redis
	validate *validator.Validate
	instance string
}

func NewAlerts(st store.Store, redisCache *cache.Redis, instance string) *Alerts {
	return &Alerts{
		store:    st,
		cache:    redisCache,
		validate: validator.New(),
		instance: instance,
	}
}

// ServeHTTP routes /alerts and /alerts/{id} by method.
func (h *Alerts) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(r.URL.Path, "/")

	// Collection endpoints: /alerts
	if len(pathParts) <= 2 || pathParts[2] == "" {
		switch r.Method {
		case http.MethodGet:
			h.browse(w, r)
		case http.MethodPost:
			h.create(w, r)
		case http.MethodPut:
			h.bulkReplace(w, r)
		case http.MethodDelete:
			h.clear(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	alertID := pathParts[2]
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, alertID)
	case http.MethodPut, http.MethodPatch:
		h.update(w, r, alertID)
	case http.MethodDelete:
		h.delete(w, r, alertID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Alerts) browse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "BrowseAlerts")
	defer span.End()
	traceID := span.SpanContext().TraceID().String()

	cacheKey := generateCacheKey(r, browseCachePrefix)
	if h.cache != nil {
		if cached, err := h.cache.GetCache(ctx, cacheKey); err == nil && cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cached))
			return
		}
	}

	alerts, err := h.store.List(ctx)
	if err != nil {
		logger.Log.Error("Failed to fetch alerts",
			zap.String("trace_id", traceID),
			zap.Error(err),
		)
		http.Error(w, "Failed to fetch alerts", http.StatusInternalServerError)
		return
	}

	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		filtered := alerts[:0]
		for _, alert := range alerts {
			if strings.EqualFold(alert.CryptoSymbol, symbol) {
				filtered = append(filtered, alert)
			}
		}
		alerts = filtered
	}

	respBytes, err := json.Marshal(Response{
		Message: "Alerts retrieved successfully",
		Data:    alerts,
	})
	if err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
		return
	}

	if h.cache != nil {
		if cacheErr := h.cache.SetCache(ctx, cacheKey, string(respBytes), 30*time.Second); cacheErr != nil {
			logger.Log.Warn("Failed to store response in cache",
				zap.String("trace_id", traceID),
				zap.String("cache_key", cacheKey),
				zap.Error(cacheErr),
			)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(respBytes)
}

func (h *Alerts) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "CreateAlert")
	defer span.End()
	traceID := span.SpanContext().TraceID().String()

	var req CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		logger.Log.Warn("Invalid create alert request",
			zap.String("trace_id", traceID),
			zap.Error(err),
		)
		http.Error(w, "Invalid alert: crypto_symbol, crypto_name and a positive threshold are required", http.StatusBadRequest)
		return
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}

	alert := models.Alert{
		ID:           uuid.New().String(),
		CryptoSymbol: strings.ToUpper(req.CryptoSymbol),
		CryptoName:   req.CryptoName,
		Threshold:    req.Threshold,
		IsUpperBound: req.IsUpperBound,
		IsEnabled:    enabled,
		CreatedAt:    time.Now(),
	}

	if err := h.store.Save(ctx, alert); err != nil {
		logger.Log.Error("Failed to create alert",
			zap.String("trace_id", traceID),
			zap.Error(err),
		)
		http.Error(w, "Failed to create alert", http.StatusInternalServerError)
		return
	}

	h.invalidateBrowseCache(ctx)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(Response{Message: "Alert created successfully", Data: alert})
}

func (h *Alerts) get(w http.ResponseWriter, r *http.Request, alertID string) {
	ctx := r.Context()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "GetAlert")
	defer span.End()

	alert, err := h.findByID(ctx, alertID)
	if err != nil {
		http.Error(w, "Alert not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{Message: "Alert retrieved successfully", Data: alert})
}

func (h *Alerts) update(w http.ResponseWriter, r *http.Request, alertID string) {
	ctx := r.Context()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "UpdateAlert")
	defer span.End()
	traceID := span.SpanContext().TraceID().String()

	existing, err := h.findByID(ctx, alertID)
	if err != nil {
		http.Error(w, "Alert not found", http.StatusNotFound)
		return
	}

	var req UpdateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Invalid alert: threshold must be positive", http.StatusBadRequest)
		return
	}

	if req.CryptoSymbol != "" {
		existing.CryptoSymbol = strings.ToUpper(req.CryptoSymbol)
	}
	if req.CryptoName != "" {
		existing.CryptoName = req.CryptoName
	}
	if req.Threshold != nil {
		existing.Threshold = *req.Threshold
	}
	if req.IsUpperBound != nil {
		existing.IsUpperBound = *req.IsUpperBound
	}
	if req.IsEnabled != nil {
		existing.IsEnabled = *req.IsEnabled
	}

	if err := h.store.Update(ctx, existing); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}
		logger.Log.Error("Failed to update alert",
			zap.String("trace_id", traceID),
			zap.String("alert_id", alertID),
			zap.Error(err),
		)
		http.Error(w, "Failed to update alert", http.StatusInternalServerError)
		return
	}

	h.invalidateBrowseCache(ctx)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{Message: "Alert updated successfully", Data: existing})
}

func (h *Alerts) delete(w http.ResponseWriter, r *http.Request, alertID string) {
	ctx := r.Context()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DeleteAlert")
	defer span.End()
	traceID := span.SpanContext().TraceID().String()

	if err := h.store.Delete(ctx, alertID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}
		logger.Log.Error("Failed to delete alert",
			zap.String("trace_id", traceID),
			zap.String("alert_id", alertID),
			zap.Error(err),
		)
		http.Error(w, "Failed to delete alert", http.StatusInternalServerError)
		return
	}

	h.invalidateBrowseCache(ctx)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{Message: "Alert deleted successfully"})
}

// bulkReplace swaps the entire alert set in one call.
func (h *Alerts) bulkReplace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "BulkReplaceAlerts")
	defer span.End()

	var reqs []CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	now := time.Now()
	alerts := make([]models.Alert, 0, len(reqs))
	for _, req := range reqs {
		if err := h.validate.Struct(req); err != nil {
			http.Error(w, "Invalid alert: crypto_symbol, crypto_name and a positive threshold are required", http.StatusBadRequest)
			return
		}
		enabled := true
		if req.IsEnabled != nil {
			enabled = *req.IsEnabled
		}
		alerts = append(alerts, models.Alert{
			ID:           uuid.New().String(),
			CryptoSymbol: strings.ToUpper(req.CryptoSymbol),
			CryptoName:   req.CryptoName,
			Threshold:    req.Threshold,
			IsUpperBound: req.IsUpperBound,
			IsEnabled:    enabled,
			CreatedAt:    now,
		})
	}

	if err := h.store.SaveAll(ctx, alerts); err != nil {
		logger.Log.Error("Failed to bulk-replace alerts", zap.Error(err))
		http.Error(w, "Failed to replace alerts", http.StatusInternalServerError)
		return
	}

	h.invalidateBrowseCache(ctx)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{Message: "Alerts replaced successfully", Data: alerts})
}

func (h *Alerts) clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ClearAlerts")
	defer span.End()

	if err := h.store.Clear(ctx); err != nil {
		logger.Log.Error("Failed to clear alerts", zap.Error(err))
		http.Error(w, "Failed to clear alerts", http.StatusInternalServerError)
		return
	}

	h.invalidateBrowseCache(ctx)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{Message: "Alerts cleared successfully"})
}

// findByID scans the full list; the store has no point lookup and alert
// counts are tiny.
func (h *Alerts) findByID(ctx context.Context, alertID string) (models.Alert, error) {
	alerts, err := h.store.List(ctx)
	if err != nil {
		return models.Alert{}, err
	}
	for _, alert := range alerts {
		if alert.ID == alertID {
			return alert, nil
		}
	}
	return models.Alert{}, store.ErrNotFound
}

func (h *Alerts) invalidateBrowseCache(ctx context.Context) {
	if h.cache == nil {
		return
	}
	invalidated, err := h.cache.InvalidateByPrefix(ctx, browseCachePrefix)
	if err != nil {
		logger.Log.Warn("Failed to invalidate browse cache", zap.Error(err))
		return
	}
	logger.Log.Info("Cache invalidation completed",
		zap.String("prefix", browseCachePrefix),
		zap.String("instance", h.instance),
		zap.Int("invalidated_keys", invalidated),
	)
}

func generateCacheKey(r *http.Request, prefix string) string {
	queryParams := r.URL.Query()
	var keys []string
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var queryString []string
	for _, k := range keys {
		queryString = append(queryString, fmt.Sprintf("%s=%s", k, strings.Join(queryParams[k], ",")))
	}
	joinedParams := strings.Join(queryString, "&")

	hash := sha256.Sum256([]byte(joinedParams))
	return prefix + hex.EncodeToString(hash[:8])
}
