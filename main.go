package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"voxlate/audio"
	"voxlate/lang"
	"voxlate/pipeline"
	"voxlate/play"
	"voxlate/session"
	"voxlate/store"
	"voxlate/stt"
	"voxlate/translate"
	"voxlate/tts"
)

var logger *log.Logger

func init() {
	cobra.OnInitialize(initConfig)

	liveCmd.Flags().Int("chunk", 4, "Capture chunk length in seconds (1-8)")
	liveCmd.Flags().Int("pause", 0, "Pause between chunks in seconds (0-3)")
	viper.BindPFlag("chunk_seconds", liveCmd.Flags().Lookup("chunk"))
	viper.BindPFlag("pause_seconds", liveCmd.Flags().Lookup("pause"))
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(langsCmd)
	rootCmd.AddCommand(historyCmd)

	// Add persistent flags
	rootCmd.PersistentFlags().String("target", "es", "Target language name or code")
	rootCmd.PersistentFlags().String("stt", "openai", "Transcription backend (openai, deepgram, whispercpp)")
	rootCmd.PersistentFlags().String("tts", "gtranslate", "Synthesis backend (gtranslate, elevenlabs, espeak)")
	rootCmd.PersistentFlags().Bool("detect", true, "Detect the source language of each utterance")
	rootCmd.PersistentFlags().Bool("save", true, "Persist synthesized audio and record history")
	rootCmd.PersistentFlags().String("openai-api-key", "", "OpenAI API key")
	rootCmd.PersistentFlags().String("deepgram-api-key", "", "Deepgram API key")
	rootCmd.PersistentFlags().String("elevenlabs-api-key", "", "ElevenLabs API key")
	rootCmd.PersistentFlags().String("elevenlabs-voice", "", "ElevenLabs voice ID")
	rootCmd.PersistentFlags().String("whisper-bin", "", "whisper-cli executable path")
	rootCmd.PersistentFlags().String("whisper-model", "", "ggml model file for the local backend")

	// Bind flags to viper
	viper.BindPFlag("target", rootCmd.PersistentFlags().Lookup("target"))
	viper.BindPFlag("stt_backend", rootCmd.PersistentFlags().Lookup("stt"))
	viper.BindPFlag("tts_backend", rootCmd.PersistentFlags().Lookup("tts"))
	viper.BindPFlag("detect", rootCmd.PersistentFlags().Lookup("detect"))
	viper.BindPFlag("save", rootCmd.PersistentFlags().Lookup("save"))
	viper.BindPFlag(
		"openai_api_key",
		rootCmd.PersistentFlags().Lookup("openai-api-key"),
	)
	viper.BindPFlag(
		"deepgram_api_key",
		rootCmd.PersistentFlags().Lookup("deepgram-api-key"),
	)
	viper.BindPFlag(
		"elevenlabs_api_key",
		rootCmd.PersistentFlags().Lookup("elevenlabs-api-key"),
	)
	viper.BindPFlag(
		"elevenlabs_voice",
		rootCmd.PersistentFlags().Lookup("elevenlabs-voice"),
	)
	viper.BindPFlag("whisper_bin", rootCmd.PersistentFlags().Lookup("whisper-bin"))
	viper.BindPFlag("whisper_model", rootCmd.PersistentFlags().Lookup("whisper-model"))
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %s\n", err)
		}
	}

	logger = log.New(os.Stdout)
}

var rootCmd = &cobra.Command{
	Use:   "voxlate",
	Short: "Voxlate translates speech between languages",
	Long:  `Voxlate listens to the microphone or reads audio files, transcribes the speech, translates it, and speaks the translation aloud.`,
}

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Start the live translation loop",
	Long:  `Capture microphone audio in short chunks and translate each chunk as it arrives, until interrupted`,
	Run:   runLive,
}

var translateCmd = &cobra.Command{
	Use:   "translate <file...>",
	Short: "Translate audio files",
	Long:  `Translate one or more audio files (or zip archives of audio files) and print the results in a table`,
	Args:  cobra.MinimumNArgs(1),
	Run:   runTranslate,
}

var sayCmd = &cobra.Command{
	Use:   "say <text>",
	Short: "Translate text and speak it aloud",
	Args:  cobra.MinimumNArgs(1),
	Run:   runSay,
}

var langsCmd = &cobra.Command{
	Use:   "langs",
	Short: "List the supported target languages",
	Run:   runLangs,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent translations in a table",
	Run:   runHistory,
}

func createLoggers() (mainLogger, liveLogger, pipeLogger, dataLogger *log.Logger) {
	logLevel := log.InfoLevel
	if viper.GetBool("debug") {
		logLevel = log.DebugLevel
	}

	logger.SetLevel(logLevel)
	logger.SetReportCaller(logLevel == log.DebugLevel)
	logger.SetCallerFormatter(
		func(file string, line int, funcName string) string {
			path, err := filepath.Rel(".", file)
			if err != nil {
				path = file
			}
			return fmt.Sprintf("%s:%d", path, line)
		},
	)

	styles := log.DefaultStyles()
	styles.Prefix = styles.Prefix.MarginTop(1).
		Bold(false).Transform(func(s string) string {
		return strings.TrimSuffix(s, ":")
	})
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].
		MaxWidth(6).
		MarginRight(1).
		Bold(false)
	styles.Levels[log.ErrorLevel] = styles.Levels[log.ErrorLevel].
		MaxWidth(6).
		MarginRight(1).
		Bold(false)
	styles.Message = styles.Message.Bold(true).Width(24)
	styles.Key = styles.Key.MarginLeft(1).
		Bold(false).
		Foreground(lipgloss.Color("#ff8800"))

	logger.SetStyles(styles)

	mainLogger = logger.With().WithPrefix("main")
	liveLogger = logger.With().WithPrefix("live")
	pipeLogger = logger.With().WithPrefix("pipe")
	dataLogger = logger.With().WithPrefix("data")

	return
}

// clampInt keeps a flag value inside its documented range.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func resolveTarget(mainLogger *log.Logger) string {
	target := viper.GetString("target")
	code, ok := lang.Code(target)
	if !ok {
		mainLogger.Fatal("unknown target language", "target", target)
	}
	return code
}

// buildPipeline assembles the step chain from the config surface. A backend
// that fails to initialize is replaced with its no-op stand-in so the rest of
// the chain keeps working.
func buildPipeline(cfg pipeline.Config, scratchDir string, mainLogger, pipeLogger *log.Logger) *pipeline.Pipeline {
	transcriber, err := stt.New(cfg.STT, stt.Config{
		OpenAIKey:    viper.GetString("openai_api_key"),
		DeepgramKey:  viper.GetString("deepgram_api_key"),
		WhisperBin:   viper.GetString("whisper_bin"),
		WhisperModel: viper.GetString("whisper_model"),
	})
	if err != nil {
		mainLogger.Warn("transcription disabled", "backend", cfg.STT, "error", err.Error())
		transcriber = stt.Disabled{}
	}

	synthesizer, err := tts.New(cfg.TTS, tts.Config{
		ScratchDir:      scratchDir,
		ElevenLabsKey:   viper.GetString("elevenlabs_api_key"),
		ElevenLabsVoice: viper.GetString("elevenlabs_voice"),
	})
	if err != nil {
		mainLogger.Warn("synthesis disabled", "backend", cfg.TTS, "error", err.Error())
		synthesizer = tts.Disabled{}
	}

	var detector pipeline.Detector
	if cfg.AutoDetect {
		detector = lang.NewDetector()
	}

	return pipeline.New(cfg, pipeLogger, transcriber, translate.NewGoogleTranslator(), synthesizer, detector)
}

func runLive(cmd *cobra.Command, args []string) {
	mainLogger, liveLogger, pipeLogger, dataLogger := createLoggers()

	cfg := pipeline.Config{
		Target:       resolveTarget(mainLogger),
		AutoDetect:   viper.GetBool("detect"),
		Persist:      viper.GetBool("save"),
		ChunkSeconds: clampInt(viper.GetInt("chunk_seconds"), 1, 8),
		PauseSeconds: clampInt(viper.GetInt("pause_seconds"), 0, 3),
		STT:          stt.Kind(viper.GetString("stt_backend")),
		TTS:          tts.Kind(viper.GetString("tts_backend")),
	}

	scratch, err := store.NewScratch()
	if err != nil {
		mainLogger.Fatal("create scratch dir", "error", err.Error())
	}
	defer scratch.Close()

	pipe := buildPipeline(cfg, scratch.Dir(), mainLogger, pipeLogger)

	if cfg.Persist {
		history, err := store.OpenHistory("voxlate.db")
		if err != nil {
			dataLogger.Warn("history disabled", "error", err.Error())
		} else {
			defer history.Close()
			pipe.WithHistory(history)
		}
	}

	player := play.NewPlayer(liveLogger)
	mic := audio.NewMicSource(16000, 1)
	live := session.NewLive(liveLogger, mic, pipe, player, ".")

	mainLogger.Info("starting live translation",
		"target", cfg.Target,
		"stt", cfg.STT,
		"tts", cfg.TTS,
		"chunk", cfg.ChunkSeconds,
	)
	live.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		mainLogger.Info("interrupt received, stopping")
	case <-waitChan(live):
	}

	live.Stop()
	live.Wait()
	player.Drain()
	mainLogger.Info("live session ended")
}

// waitChan adapts Live.Wait to a channel so the signal loop can also notice
// the session ending on its own (device failure).
func waitChan(live *session.Live) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		live.Wait()
		close(ch)
	}()
	return ch
}

func runTranslate(cmd *cobra.Command, args []string) {
	mainLogger, _, pipeLogger, dataLogger := createLoggers()

	cfg := pipeline.Config{
		Target:     resolveTarget(mainLogger),
		AutoDetect: viper.GetBool("detect"),
		Persist:    viper.GetBool("save"),
		STT:        stt.Kind(viper.GetString("stt_backend")),
		TTS:        tts.Kind(viper.GetString("tts_backend")),
	}

	scratch, err := store.NewScratch()
	if err != nil {
		mainLogger.Fatal("create scratch dir", "error", err.Error())
	}
	defer scratch.Close()

	pipe := buildPipeline(cfg, scratch.Dir(), mainLogger, pipeLogger)

	if cfg.Persist {
		history, err := store.OpenHistory("voxlate.db")
		if err != nil {
			dataLogger.Warn("history disabled", "error", err.Error())
		} else {
			defer history.Close()
			pipe.WithHistory(history)
		}
	}

	var inputs []pipeline.Input
	for _, path := range args {
		if strings.EqualFold(filepath.Ext(path), ".zip") {
			data, err := os.ReadFile(path)
			if err != nil {
				mainLogger.Fatal("read archive", "path", path, "error", err.Error())
			}
			entries, err := audio.ExpandZip(data)
			if err != nil {
				mainLogger.Fatal("expand archive", "path", path, "error", err.Error())
			}
			for _, entry := range entries {
				inputs = append(inputs, pipeline.Input{Name: entry.Name, Sample: entry.Sample})
			}
			continue
		}

		sample, err := audio.LoadFile(path)
		if err != nil {
			mainLogger.Fatal("load audio file", "path", path, "error", err.Error())
		}
		inputs = append(inputs, pipeline.Input{Name: filepath.Base(path), Sample: sample})
	}

	if len(inputs) == 0 {
		fmt.Println("No audio files found.")
		return
	}

	runner := pipeline.NewBatchRunner(pipe)
	if cfg.Persist {
		runner.WithPersist(func(artifactPath string) (string, error) {
			dest, err := store.Persist(artifactPath, ".", "translated")
			if err == nil {
				pipeLogger.Info("saved audio", "path", dest)
			}
			return dest, err
		})
	}
	results := runner.Run(context.Background(), inputs)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"File", "Detected", "Source", "Translation"})
	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)

	for _, res := range results {
		source := res.Source
		if res.Err != nil {
			source = fmt.Sprintf("error: %s", res.Err)
		}
		table.Append([]string{res.Name, res.Detected, source, res.Translated})
	}

	table.Render()
}

func runSay(cmd *cobra.Command, args []string) {
	mainLogger, liveLogger, pipeLogger, _ := createLoggers()

	text := strings.Join(args, " ")
	target := resolveTarget(mainLogger)

	scratch, err := store.NewScratch()
	if err != nil {
		mainLogger.Fatal("create scratch dir", "error", err.Error())
	}
	defer scratch.Close()

	translator := translate.NewGoogleTranslator()
	translated, err := translator.Translate(context.Background(), text, target)
	if err != nil {
		mainLogger.Fatal("translate", "error", err.Error())
	}
	fmt.Println(translated)

	synthesizer, err := tts.New(tts.Kind(viper.GetString("tts_backend")), tts.Config{
		ScratchDir:      scratch.Dir(),
		ElevenLabsKey:   viper.GetString("elevenlabs_api_key"),
		ElevenLabsVoice: viper.GetString("elevenlabs_voice"),
	})
	if err != nil {
		mainLogger.Fatal("create synthesizer", "error", err.Error())
	}

	artifact, err := synthesizer.Synthesize(context.Background(), translated, target)
	if err != nil {
		pipeLogger.Warn("synthesis failed", "error", err.Error())
		return
	}

	player := play.NewPlayer(liveLogger)
	player.Play(artifact)
	player.Drain()
}

func runLangs(cmd *cobra.Command, args []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Language", "Code"})
	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetAutoFormatHeaders(true)

	for _, name := range lang.Names() {
		table.Append([]string{name, lang.Languages[name]})
	}

	table.Render()
}

func runHistory(cmd *cobra.Command, args []string) {
	mainLogger, _, _, _ := createLoggers()

	history, err := store.OpenHistory("voxlate.db")
	if err != nil {
		mainLogger.Fatal("open history", "error", err.Error())
	}
	defer history.Close()

	utterances, err := history.Recent(50)
	if err != nil {
		mainLogger.Fatal("fetch history", "error", err.Error())
	}

	if len(utterances) == 0 {
		fmt.Println("No translations recorded yet.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"When", "Mode", "Detected", "Source", "Translation", "Audio"})
	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)

	for _, u := range utterances {
		table.Append([]string{
			u.CreatedAt.Format("2006-01-02 15:04:05"),
			u.Mode,
			u.Detected,
			u.Source,
			u.Translated,
			u.Artifact,
		})
	}

	table.Render()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
