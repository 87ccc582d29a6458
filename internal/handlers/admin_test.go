package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gdg-garage/training-calculator/internal/listing"
	"github.com/gdg-garage/training-calculator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRegistrations(t *testing.T, env *testEnv) {
	t.Helper()
	env.submit(t, func(f url.Values) { f.Set("company--name", "Acme"); f.Set("training--percentage", "10") })
	env.submit(t, func(f url.Values) {
		f.Set("company--name", "Bricks")
		f.Set("company--email", "bob@bricks.test")
		f.Set("training--percentage", "20")
		f.Set("company--employeecount", "9")
	})
	env.submit(t, func(f url.Values) {
		f.Set("company--name", "Coral")
		f.Set("company--email", "carol@coral.test")
		f.Set("training--percentage", "30")
		f.Set("company--employeecount", "1000")
	})
}

func TestAdminList_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get(AdminListPath, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.get(AdminExportPath, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.get(RegistrationsJSON, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminList_HTML(t *testing.T) {
	env := newTestEnv(t)
	seedRegistrations(t, env)

	rr := env.get(AdminListPath, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := rr.Body.String()

	assert.Contains(t, body, "<h2>Registrations</h2>")
	assert.Contains(t, body, "3 items")
	assert.Contains(t, body, "1 of 2")
	assert.Contains(t, body, ">Acme<")
	assert.Contains(t, body, ">Bricks<")
	assert.NotContains(t, body, ">Coral<")

	rr = env.get(AdminListPath+"?paged=2", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), ">Coral<")
	assert.Contains(t, rr.Body.String(), "2 of 2")
}

func TestAdminList_FilterSearchSort(t *testing.T) {
	env := newTestEnv(t)
	seedRegistrations(t, env)

	rr := env.get(AdminListPath+"?percentage=20", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), ">Bricks<")
	assert.Contains(t, rr.Body.String(), "1 items")

	rr = env.get(AdminListPath+"?s=coral", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), ">Coral<")
	assert.Contains(t, rr.Body.String(), "1 items")

	rr = env.get(AdminListPath+"?orderby=employeecount&order=desc", true)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Less(t, strings.Index(body, ">Coral<"), strings.Index(body, ">Acme<"))
	assert.NotContains(t, body, ">Bricks<")

	rr = env.get(AdminListPath+"?percentage=abc", true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminList_ExportBulkAction(t *testing.T) {
	env := newTestEnv(t)
	seedRegistrations(t, env)

	for _, path := range []string{
		AdminListPath + "?action=export&orderby=company_name&order=desc",
		AdminListPath + "?action=-1&action2=export&orderby=company_name&order=desc",
		AdminExportPath + "?orderby=company_name&order=desc",
	} {
		rr := env.get(path, true)
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="registrations_2024-07-01_09-30.csv"`, rr.Header().Get("Content-Disposition"))

		records, err := csv.NewReader(rr.Body).ReadAll()
		require.NoError(t, err)
		// Export ignores paging: header plus all three rows.
		require.Len(t, records, 4, path)
		assert.Equal(t, "Company", records[0][0])
		assert.Equal(t, []string{"Coral", "Bricks", "Acme"}, []string{records[1][0], records[2][0], records[3][0]})
		assert.Equal(t, "C", records[1][1])
	}
}

func TestAdminList_ExportWithAPIKey(t *testing.T) {
	env := newTestEnv(t)
	seedRegistrations(t, env)
	require.NoError(t, env.db.Create(&models.APIKey{AdminID: env.admin.ID, Key: "script-key"}).Error)

	req := newGet(AdminExportPath + "?percentage=10")
	req.Header.Set("X-API-KEY", "script-key")
	rr := serve(env, req)

	require.Equal(t, http.StatusOK, rr.Code)
	records, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Acme", records[1][0])
}

func TestAdminList_JSON(t *testing.T) {
	env := newTestEnv(t)
	seedRegistrations(t, env)

	rr := env.get(RegistrationsJSON+"?orderby=company_name&order=desc&paged=2", true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var page listing.Page
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.PerPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Acme", page.Items[0].CompanyName)
	assert.Equal(t, "A", page.Items[0].Category)

	rr = env.get(RegistrationsJSON+"?percentage=x", true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminList_ExportNeutralizesFormulas(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, func(f url.Values) {
		f.Set("company--name", `=HYPERLINK("http://evil.test","click")`)
	})

	rr := env.get(AdminExportPath, true)
	require.Equal(t, http.StatusOK, rr.Code)

	records, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `'=HYPERLINK("http://evil.test","click")`, records[1][0])
	assert.Equal(t, "'+971 50 000 0000", records[1][7])
}

func TestAdminList_JSONOrderCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	seedRegistrations(t, env)

	rr := env.get(RegistrationsJSON+"?orderby=company_name&order=DESC", true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var page listing.Page
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Coral", page.Items[0].CompanyName)

	html := env.get(AdminListPath+"?orderby=company_name&order=DESC", true)
	require.Equal(t, http.StatusOK, html.Code)
	assert.Less(t, strings.Index(html.Body.String(), ">Coral<"), strings.Index(html.Body.String(), ">Bricks<"))
}
