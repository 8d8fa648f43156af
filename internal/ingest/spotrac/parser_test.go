package spotrac

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/sidelined/internal/ingest"
	"github.com/fortuna/sidelined/internal/model"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	body, err := os.ReadFile("testdata/injuries_2025.html")
	require.NoError(t, err)
	return string(body)
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseInjuries(t *testing.T) {
	records, skipped, err := ParseInjuries(parseDoc(t, loadFixture(t)))
	require.NoError(t, err)
	require.Equal(t, 2, skipped)
	require.Len(t, records, 2)

	embiid := records[0]
	require.Equal(t, "Joel Embiid", embiid.Player)
	require.Equal(t, 1, embiid.Rank)
	require.Equal(t, "PHI", embiid.Team)
	require.Equal(t, "C", embiid.Position)
	require.Equal(t, "Knee - Meniscus | Knee - Injury Management", embiid.InjuryDetails)
	require.Equal(t, 63, embiid.GamesMissed)
	require.Equal(t, 151, embiid.DaysMissed)
	require.NotNil(t, embiid.CashTotal)
	require.Equal(t, int64(40236735), *embiid.CashTotal)

	jv := records[1]
	require.Equal(t, "Jonas Valanciunas", jv.Player)
	require.Equal(t, "Jonas Valančiūnas", jv.RawName)
	require.Equal(t, "SAC", jv.Team)
	require.Equal(t, 1002, jv.GamesMissed)
	require.Nil(t, jv.CashTotal)
}

func TestParseInjuriesSchemaDrift(t *testing.T) {
	_, _, err := ParseInjuries(parseDoc(t, `<html><body><div>Page redesigned</div></body></html>`))

	var drift *model.SchemaDriftError
	require.True(t, errors.As(err, &drift))
	require.Equal(t, "spotrac", drift.Source)
}

func TestParseInjuriesAllMalformed(t *testing.T) {
	html := `<table><tbody>
		<tr><td>1</td><td>A</td><td>G</td><td></td><td></td><td>x</td><td>1</td><td>$1</td></tr>
	</tbody></table>`

	_, skipped, err := ParseInjuries(parseDoc(t, html))
	require.ErrorIs(t, err, model.ErrMalformedInput)
	require.Equal(t, 1, skipped)
}

func TestClientFetchSeason(t *testing.T) {
	fixture := loadFixture(t)
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	quiet := log.New(io.Discard, "", 0)
	client := New(ingest.NewHTTPFetcher(time.Second, "", quiet), srv.URL+"/nba/injured/_/year", quiet)

	records, err := client.FetchSeason(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "/nba/injured/_/year/2025/view/player", gotPath)
}

func TestClientFetchSeasonDriftCarriesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing here</body></html>"))
	}))
	defer srv.Close()

	quiet := log.New(io.Discard, "", 0)
	client := New(ingest.NewHTTPFetcher(time.Second, "", quiet), srv.URL, quiet)

	_, err := client.FetchSeason(context.Background(), 2024)

	var drift *model.SchemaDriftError
	require.True(t, errors.As(err, &drift))
	require.Equal(t, srv.URL+"/2024/view/player", drift.URL)
}

func TestClientFetchSeasonHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	quiet := log.New(io.Discard, "", 0)
	client := New(ingest.NewHTTPFetcher(time.Second, "", quiet), srv.URL, quiet)

	_, err := client.FetchSeason(context.Background(), 2025)

	var rfe *model.RemoteFetchError
	require.True(t, errors.As(err, &rfe))
	require.Equal(t, http.StatusForbidden, rfe.StatusCode)
}
