package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"momentumAPI/internal/habit"
	"momentumAPI/middleware"
	"momentumAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type HabitHandler struct {
	habitService *services.HabitService
}

func NewHabitHandler(habitService *services.HabitService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req habit.CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.habitService.CreateHabit(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HabitHandler) GetHabits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	habits, err := h.habitService.GetHabits(ctx, clerkID, activeOnly, limit, offset)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) GetHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}

	detail, err := h.habitService.GetHabitWithLogs(ctx, clerkID, habitID, days)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	var req habit.UpdateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.habitService.UpdateHabit(ctx, clerkID, habitID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HabitHandler) ArchiveHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	archived, err := h.habitService.ArchiveHabit(ctx, clerkID, habitID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, archived)
}

func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	if err := h.habitService.DeleteHabit(ctx, clerkID, habitID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Habit deleted successfully"})
}

func (h *HabitHandler) LogHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	var req habit.LogHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hlog, outcome, err := h.habitService.LogHabit(ctx, clerkID, habitID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	middleware.RecordCheckIn(outcome.String())

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"log":            hlog,
		"streak_outcome": outcome.String(),
	})
}

func (h *HabitHandler) GetHabitLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	start, end, err := dateRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logs, err := h.habitService.GetHabitLogs(ctx, clerkID, habitID, start, end)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, logs)
}

func (h *HabitHandler) GetLogsRange(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	start, end, err := dateRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logs, err := h.habitService.GetUserLogs(ctx, clerkID, start, end)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, logs)
}

func (h *HabitHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	logID, err := pathID(r, "logID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid log ID")
		return
	}

	if err := h.habitService.DeleteLog(ctx, clerkID, logID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Log deleted successfully"})
}

func (h *HabitHandler) GetTodayHabits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	today, err := h.habitService.GetTodayHabits(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, today)
}

func (h *HabitHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitStats, err := h.habitService.GetStats(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, habitStats)
}

func (h *HabitHandler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	streaks, err := h.habitService.GetStreaks(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, streaks)
}

func pathID(r *http.Request, key string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[key])
}

// dateRange parses optional start/end query params (YYYY-MM-DD). Defaults to
// the last 30 days.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return start, end, err
		}
		start = parsed
	}
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return start, end, err
		}
		end = parsed
	}
	return start, end, nil
}
