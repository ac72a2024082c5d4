package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"ray/internal/assist"
	"ray/internal/audio"
	"ray/internal/chat"
	"ray/internal/config"
	"ray/internal/feature"
	"ray/internal/intent"
	"ray/internal/ipc"
	"ray/internal/launch"
	"ray/internal/notify"
	"ray/internal/resolve"
	"ray/internal/shell"
	"ray/internal/voice"
	"ray/pkg/audioconv"
	"ray/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	cfgFile := cli.StringP("config", "c", "", "Config file path")
	logLevel := cli.StringP("log", "l", "", "Log level (overrides config)")
	noAudio := cli.Bool("no-audio", false, "Run without microphone and speakers")
	cli.Parse()

	godotenv.Load(*envFile)

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[level],
	})))

	log.Info("Booting up", "assistant", cfg.Assistant)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Error("OPENAI_API_KEY not set")
		os.Exit(1)
	}

	httpClient := http.DefaultClient
	if cfg.Chat.Proxy != "" {
		httpClient, err = chat.NewSocksClient(cfg.Chat.Proxy)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", cfg.Chat.Proxy, "err", err)
			os.Exit(1)
		}
		log.Debug("Loaded proxy", "addr", cfg.Chat.Proxy)
	}

	backend, err := chat.NewOpenAIBackend(chat.OpenAIConfig{
		APIKey:     apiKey,
		BaseURL:    cfg.Chat.BaseURL,
		Model:      cfg.Chat.Model,
		HTTPClient: httpClient,
	})
	if err != nil {
		log.Error("Failed to init chat backend", "err", err)
		os.Exit(1)
	}
	chatClient := chat.NewClient(backend, cfg.Assistant, log.Default())

	resolverOpts := []resolve.Option{
		resolve.WithApps(cfg.Apps),
		resolve.WithWebsites(cfg.Websites),
	}
	if len(cfg.SearchDirs) > 0 {
		resolverOpts = append(resolverOpts, resolve.WithSearchDirs(cfg.SearchDirs))
	}
	resolver := resolve.New(resolverOpts...)
	launcher := launch.New(log.Default())

	hub, out, input, transcriber := buildFrontend(cfg, *noAudio)

	router := intent.NewRouter(intent.Config{
		Voice:     out,
		Apps:      resolver,
		Launcher:  launcher,
		Player:    feature.NewYouTube(envOr("YOUTUBE_API_KEY", cfg.YouTube.APIKey), launcher.OpenURL, log.Default()),
		Messenger: feature.NewWhatsApp(cfg.Twilio),
		Weather:   feature.NewWeather(envOr("WEATHER_API_KEY", cfg.Weather.APIKey), log.Default()),
		Battery:   feature.Battery{},
		Mailer:    feature.NewMailer(cfg.SMTP),
		Quit: func() {
			log.Info("Session exit requested")
			hub.Close()
			os.Exit(0)
		},
		Logger: log.Default(),
	})

	chime := notify.NewChime(cfg.Voice.ChimePath)

	assistant := assist.New(assist.Config{
		Name:   cfg.Assistant,
		Voice:  out,
		Router: router,
		Chat:   chatClient,
		Listen: input.Capture,
		Chime: func() {
			if err := chime.Play(); err != nil {
				log.Debug("Chime unavailable", "err", err)
			}
		},
		Stream: hub.Chunk,
		Logger: log.Default(),
	})

	hub.SetHandlers(shell.Handlers{
		Ask: func(text string) string {
			defer hub.ShowHood()
			return assistant.HandleTextTurn(text)
		},
		Mic: func() {
			defer hub.ShowHood()
			assistant.HandleVoiceTurn()
		},
		Regenerate: assistant.Regenerate,
		Listen: func(active bool) {
			if active {
				assistant.StartListening()
			} else {
				assistant.StopListening()
			}
		},
		Audio: func(data []byte, name string) string {
			defer hub.ShowHood()
			return handleAudioBlob(assistant, transcriber, cfg.Voice.Language, data, name)
		},
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	go func() {
		log.Info("Shell bus listening", "addr", cfg.Shell.Addr)
		if err := http.ListenAndServe(cfg.Shell.Addr, mux); err != nil {
			log.Error("Shell bus failed", "err", err)
			os.Exit(1)
		}
	}()

	srv, err := ipc.Serve(cfg.SocketPath, func(req ipc.Request) ipc.Response {
		switch req.Cmd {
		case "trigger":
			if assistant.Listening() {
				return ipc.Response{OK: false, Message: "already listening"}
			}
			go assistant.HandleVoiceTurn()
			return ipc.Response{OK: true}
		case "listen-on":
			assistant.StartListening()
			return ipc.Response{OK: true}
		case "listen-off":
			assistant.StopListening()
			return ipc.Response{OK: true}
		case "say":
			out.Say(req.Arg)
			return ipc.Response{OK: true}
		default:
			log.Warn("Unknown control command", "cmd", req.Cmd)
			return ipc.Response{OK: false, Message: "unknown command: " + req.Cmd}
		}
	})
	if err != nil {
		log.Error("Failed to start control socket", "err", err)
		os.Exit(1)
	}
	defer srv.Close()

	log.Info("Boot up - successful")
	if err := chime.Play(); err != nil {
		log.Debug("Startup chime unavailable", "err", err)
	}

	select {}
}

type capturer interface {
	Capture() string
}

// buildFrontend wires the shell bus, the voice output and the
// microphone channel. A missing microphone or whisper model degrades to
// the muted input; the daemon still serves text turns.
func buildFrontend(cfg config.Config, noAudio bool) (*shell.Hub, *voice.Output, capturer, *stt.Transcriber) {
	hub := shell.NewHub(log.Default())
	out := voice.NewOutput(cfg.Assistant, hub, log.Default())

	if noAudio || cfg.Voice.WhisperModel == "" {
		log.Info("Running without microphone")
		return hub, out, voice.Muted{}, nil
	}

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Warn("Audio init failed, running without microphone", "err", err)
		return hub, out, voice.Muted{}, nil
	}

	tr, err := stt.NewTranscriber(cfg.Voice.WhisperModel)
	if err != nil {
		log.Warn("Whisper init failed, running without microphone", "err", err)
		rec.Close()
		return hub, out, voice.Muted{}, nil
	}

	log.Debug("Loaded recorder and whisper", "model", cfg.Voice.WhisperModel)
	return hub, out, voice.NewInput(rec, tr, hub, cfg.Voice.Language, log.Default()), tr
}

// handleAudioBlob transcribes a shell-recorded clip and runs it as a
// text turn.
func handleAudioBlob(assistant *assist.Assistant, tr *stt.Transcriber, language string, data []byte, name string) string {
	if tr == nil {
		return "Speech recognition is not available."
	}

	pcm, err := audioconv.DecodeBytes(data, name)
	if err != nil {
		log.Warn("Audio blob decode failed", "name", name, "err", err)
		return assist.MsgDidntHear
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	res, err := tr.Transcribe(ctx, pcm, stt.Options{Language: language})
	if err != nil {
		log.Warn("Audio blob transcription failed", "name", name, "err", err)
		return assist.MsgDidntHear
	}
	return assistant.HandleTextTurn(res.Text)
}

// envOr prefers the environment value over the config file one.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
