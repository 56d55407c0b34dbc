package http

import (
	"net/http"
	"testing"
)

func TestResidentEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec, envl := env.do(t, http.MethodPost, "/api/v1/residents", env.adminToken, createResidentRequest{
		HouseBlock: "B-02",
		Name:       "Budi",
		SpouseName: "Sari",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	created := decodeData[residentDTO](t, envl)
	if !created.Active {
		t.Error("new residents must start active")
	}

	rec, envl = env.do(t, http.MethodGet, "/api/v1/residents", env.wargaToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	if list := decodeData[[]residentDTO](t, envl); len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2 (seed + created)", len(list))
	}

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/residents/"+created.ID, env.adminToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("deactivate: status = %d, want 204", rec.Code)
	}

	// Deactivated residents drop out of the default listing but stay
	// reachable with include_inactive.
	_, envl = env.do(t, http.MethodGet, "/api/v1/residents", env.wargaToken, nil)
	if list := decodeData[[]residentDTO](t, envl); len(list) != 1 {
		t.Errorf("active list = %d rows, want 1", len(list))
	}
	_, envl = env.do(t, http.MethodGet, "/api/v1/residents?include_inactive=1", env.wargaToken, nil)
	if list := decodeData[[]residentDTO](t, envl); len(list) != 2 {
		t.Errorf("full list = %d rows, want 2", len(list))
	}

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/residents/no-such-id", env.adminToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deactivate missing: status = %d, want 404", rec.Code)
	}
}

func TestCreateResidentValidation(t *testing.T) {
	env := newTestEnv(t)

	rec, envl := env.do(t, http.MethodPost, "/api/v1/residents", env.adminToken, createResidentRequest{Name: "  "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	for _, field := range []string{"house_block", "name"} {
		if _, ok := envl.Error.Fields[field]; !ok {
			t.Errorf("fields = %v, want key %q", envl.Error.Fields, field)
		}
	}

	// Pengurus cannot manage residents.
	rec, _ = env.do(t, http.MethodPost, "/api/v1/residents", env.pengurusToken, createResidentRequest{HouseBlock: "C-03", Name: "Citra"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pengurus create: status = %d, want 403", rec.Code)
	}
}

func TestContributionTypeEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec, envl := env.do(t, http.MethodPost, "/api/v1/contribution-types", env.adminToken, createContributionTypeRequest{
		Name:    "Iuran Keamanan",
		Nominal: "50000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	created := decodeData[contributionTypeDTO](t, envl)
	if created.Nominal.Cents != 5_000_000 {
		t.Errorf("nominal = %d cents, want 5000000", created.Nominal.Cents)
	}

	rec, envl = env.do(t, http.MethodPost, "/api/v1/contribution-types", env.adminToken, createContributionTypeRequest{Name: "Iuran Lain"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing nominal: status = %d, want 422", rec.Code)
	}
	if _, ok := envl.Error.Fields["nominal"]; !ok {
		t.Errorf("fields = %v, want key nominal", envl.Error.Fields)
	}

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/contribution-types/"+created.ID, env.adminToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("deactivate: status = %d, want 204", rec.Code)
	}

	_, envl = env.do(t, http.MethodGet, "/api/v1/contribution-types", env.wargaToken, nil)
	list := decodeData[[]contributionTypeDTO](t, envl)
	if len(list) != 1 {
		t.Fatalf("active list = %d rows, want 1 (the seed type)", len(list))
	}
}

func TestCategoryEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec, envl := env.do(t, http.MethodPost, "/api/v1/categories", env.adminToken, createCategoryRequest{Name: "Kebersihan"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	created := decodeData[categoryDTO](t, envl)

	rec, envl = env.do(t, http.MethodGet, "/api/v1/categories", env.wargaToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	list := decodeData[[]categoryDTO](t, envl)
	if len(list) != 1 || list[0].Name != "Kebersihan" {
		t.Fatalf("list = %+v, want [Kebersihan]", list)
	}

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/categories/"+created.ID, env.adminToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("deactivate: status = %d, want 204", rec.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPut, "/api/v1/settings", env.adminToken, putSettingsRequest{
		Settings: map[string]string{
			"community_name": "Paguyuban Warga Blok A",
			"treasurer_name": "Ibu Sari",
		},
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("put: status = %d, want 204 (body %s)", rec.Code, rec.Body.String())
	}

	rec, envl := env.do(t, http.MethodGet, "/api/v1/settings", env.wargaToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	settings := decodeData[[]settingDTO](t, envl)

	byKey := make(map[string]settingDTO, len(settings))
	for _, st := range settings {
		byKey[st.Key] = st
	}
	got, ok := byKey["community_name"]
	if !ok {
		t.Fatalf("settings = %+v, want community_name", settings)
	}
	if got.Value != "Paguyuban Warga Blok A" {
		t.Errorf("community_name = %q", got.Value)
	}
	if got.UpdatedBy == "" {
		t.Error("expected UpdatedBy from the session")
	}

	rec, _ = env.do(t, http.MethodPut, "/api/v1/settings", env.adminToken, putSettingsRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty put: status = %d, want 400", rec.Code)
	}

	// Single-key lookup.
	rec, envl = env.do(t, http.MethodGet, "/api/v1/settings/treasurer_name", env.wargaToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get one: status = %d, want 200", rec.Code)
	}
	if one := decodeData[settingDTO](t, envl); one.Value != "Ibu Sari" {
		t.Errorf("treasurer_name = %q, want Ibu Sari", one.Value)
	}

	rec, envl = env.do(t, http.MethodGet, "/api/v1/settings/no_such_key", env.wargaToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing key: status = %d, want 404", rec.Code)
	}
	if envl.Error == nil || envl.Error.Code != "not_found" {
		t.Fatalf("error = %+v, want not_found", envl.Error)
	}
}
