package feature

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYouTubeWithoutKeyOpensSearchPage(t *testing.T) {
	var opened string
	y := NewYouTube("", func(u string) error { opened = u; return nil }, nil)

	reply, err := y.PlayTopResult("despacito remix")
	require.NoError(t, err)
	assert.Equal(t, "Searching for despacito remix on YouTube", reply)
	assert.Equal(t, "https://www.youtube.com/results?search_query=despacito+remix", opened)
}

func TestYouTubeTopResultOpensWatchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "despacito", r.URL.Query().Get("q"))
		w.Write([]byte(`{"items":[{"id":{"videoId":"abc123"},"snippet":{"title":"Despacito"}}]}`))
	}))
	defer srv.Close()

	var opened string
	y := NewYouTube("test-key", func(u string) error { opened = u; return nil }, nil)
	y.endpoint = srv.URL

	reply, err := y.PlayTopResult("despacito")
	require.NoError(t, err)
	assert.Equal(t, "Playing Despacito on YouTube", reply)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", opened)
}

func TestYouTubeAPIFailureFallsBackToSearchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	var opened string
	y := NewYouTube("test-key", func(u string) error { opened = u; return nil }, nil)
	y.endpoint = srv.URL

	reply, err := y.PlayTopResult("jazz")
	require.NoError(t, err)
	assert.Equal(t, "Searching for jazz on YouTube", reply)
	assert.Contains(t, opened, "results?search_query=jazz")
}

func TestWeatherRequiresKey(t *testing.T) {
	w := NewWeather("", nil)
	_, err := w.Report("paris")
	assert.Error(t, err)
}

func TestWeatherReportSentence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mumbai, maharashtra", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{"weather":[{"description":"light rain"}],"main":{"temp":28.4,"humidity":83},"wind":{"speed":3.6}}`))
	}))
	defer srv.Close()

	w := NewWeather("key", nil)
	w.observeEndpoint = srv.URL

	report, err := w.Report("mumbai, maharashtra")
	require.NoError(t, err)
	assert.Equal(t,
		"The weather in mumbai, maharashtra is light rain with a temperature of 28.4 degrees Celsius, humidity of 83 percent, and wind speed of 3.6 meters per second.",
		report)
}

func TestWeatherUnknownLocationIsSpokenNotErrored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	w := NewWeather("key", nil)
	w.observeEndpoint = srv.URL

	report, err := w.Report("atlantis")
	require.NoError(t, err)
	assert.Equal(t, "I couldn't find weather information for atlantis.", report)
}

func TestWeatherEmptyLocationUsesGeolocation(t *testing.T) {
	locate := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","lat":48.85,"lon":2.35,"city":"Paris"}`))
	}))
	defer locate.Close()

	observe := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.NotEmpty(t, r.URL.Query().Get("lon"))
		assert.Empty(t, r.URL.Query().Get("q"))
		w.Write([]byte(`{"weather":[{"description":"clear sky"}],"main":{"temp":18.0,"humidity":60},"wind":{"speed":2.0}}`))
	}))
	defer observe.Close()

	w := NewWeather("key", nil)
	w.locateEndpoint = locate.URL
	w.observeEndpoint = observe.URL

	report, err := w.Report("")
	require.NoError(t, err)
	assert.Contains(t, report, "your location (Paris)")
}

func TestWhatsAppSendsForm(t *testing.T) {
	var got url.Values
	var user, pass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	wa := NewWhatsApp(TwilioConfig{AccountSID: "AC123", AuthToken: "secret", From: "+1000"})
	wa.endpoint = srv.URL

	require.NoError(t, wa.SendDirectMessage("1234567890", "hello there"))
	assert.Equal(t, "AC123", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, "whatsapp:+1234567890", got.Get("To"), "missing country prefix gets +")
	assert.Equal(t, "whatsapp:+1000", got.Get("From"))
	assert.Equal(t, "hello there", got.Get("Body"))
}

func TestWhatsAppRequiresConfig(t *testing.T) {
	wa := NewWhatsApp(TwilioConfig{})
	assert.Error(t, wa.SendDirectMessage("+1", "x"))
}

func TestWhatsAppNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	wa := NewWhatsApp(TwilioConfig{AccountSID: "AC123", AuthToken: "bad", From: "+1000"})
	wa.endpoint = srv.URL

	assert.Error(t, wa.SendDirectMessage("+1234567890", "hi"))
}

func TestMailerRequiresConfig(t *testing.T) {
	m := NewMailer(SMTPConfig{})
	assert.Error(t, m.Send("a@b.com", "s", "b"))
}
