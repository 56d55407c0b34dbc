package http

import (
	"context"
	"net/http"
	"strings"

	"iuran/internal/core"
)

// CRUD-lite endpoints for reference data. These talk to the store
// directly; there is no workflow behind them beyond soft deletion.

func (s *Server) handleListResidents(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("include_inactive") == ""

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	residents, err := s.store.ListResidents(ctx, onlyActive)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]residentDTO, 0, len(residents))
	for _, res := range residents {
		out = append(out, toResidentDTO(res))
	}
	writeData(w, http.StatusOK, out)
}

type createResidentRequest struct {
	HouseBlock string `json:"house_block"`
	Name       string `json:"name"`
	SpouseName string `json:"spouse_name"`
}

func (s *Server) handleCreateResident(w http.ResponseWriter, r *http.Request) {
	var req createResidentRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}

	ve := core.NewValidationError()
	if strings.TrimSpace(req.HouseBlock) == "" {
		ve.Add("house_block", "is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		ve.Add("name", "is required")
	}
	if err := ve.OrNil(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	created, err := s.store.CreateResident(ctx, core.Resident{
		HouseBlock: strings.TrimSpace(req.HouseBlock),
		Name:       strings.TrimSpace(req.Name),
		SpouseName: strings.TrimSpace(req.SpouseName),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toResidentDTO(created))
}

func (s *Server) handleDeactivateResident(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	if err := s.store.DeactivateResident(ctx, r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListContributionTypes(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("include_inactive") == ""

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	types, err := s.store.ListContributionTypes(ctx, onlyActive)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]contributionTypeDTO, 0, len(types))
	for _, t := range types {
		out = append(out, toContributionTypeDTO(t))
	}
	writeData(w, http.StatusOK, out)
}

type createContributionTypeRequest struct {
	Name    string `json:"name"`
	Nominal string `json:"nominal"`
}

func (s *Server) handleCreateContributionType(w http.ResponseWriter, r *http.Request) {
	var req createContributionTypeRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}

	ve := core.NewValidationError()
	if strings.TrimSpace(req.Name) == "" {
		ve.Add("name", "is required")
	}
	var nominal core.Money
	if req.Nominal != "" {
		parsed, err := parseAmount(req.Nominal)
		if err != nil {
			ve.Add("nominal", "must be a positive decimal")
		} else {
			nominal = parsed
		}
	} else {
		ve.Add("nominal", "is required")
	}
	if err := ve.OrNil(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	created, err := s.store.CreateContributionType(ctx, core.ContributionType{
		Name:    strings.TrimSpace(req.Name),
		Nominal: nominal,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toContributionTypeDTO(created))
}

func (s *Server) handleDeactivateContributionType(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	if err := s.store.DeactivateContributionType(ctx, r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("include_inactive") == ""

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	categories, err := s.store.ListExpenseCategories(ctx, onlyActive)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]categoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryDTO{ID: c.ID, Name: c.Name, Active: c.Active})
	}
	writeData(w, http.StatusOK, out)
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		ve := core.NewValidationError()
		ve.Add("name", "is required")
		writeDomainError(w, r, ve)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	created, err := s.store.CreateExpenseCategory(ctx, core.ExpenseCategory{
		Name: strings.TrimSpace(req.Name),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, categoryDTO{ID: created.ID, Name: created.Name, Active: created.Active})
}

func (s *Server) handleDeactivateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	if err := s.store.DeactivateExpenseCategory(ctx, r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	settings, err := s.store.ListSettings(ctx)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]settingDTO, 0, len(settings))
	for _, st := range settings {
		out = append(out, settingDTO{
			Key:       st.Key,
			Value:     st.Value,
			UpdatedBy: st.UpdatedBy,
			UpdatedAt: st.UpdatedAt,
		})
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	setting, err := s.store.GetSetting(ctx, r.PathValue("key"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, settingDTO{
		Key:       setting.Key,
		Value:     setting.Value,
		UpdatedBy: setting.UpdatedBy,
		UpdatedAt: setting.UpdatedAt,
	})
}

type putSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req putSettingsRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}
	if len(req.Settings) == 0 {
		writeBadRequest(w, "settings must not be empty")
		return
	}

	sess, _ := sessionFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	if err := s.store.SetSettings(ctx, req.Settings, sess.UserID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
