// Command llmtest sends one sample message through the configured model
// providers and prints what the emotion classifier and mediator return.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/coparent-mediator/cmd/mainconfig"
	"github.com/wolfman30/coparent-mediator/internal/app/bootstrap"
	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	appconfig "github.com/wolfman30/coparent-mediator/internal/config"
	"github.com/wolfman30/coparent-mediator/internal/emotion"
	"github.com/wolfman30/coparent-mediator/internal/llm"
	"github.com/wolfman30/coparent-mediator/internal/mediation"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

const sampleMessage = "You never pick the kids up on time and I'm sick of it."

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var bedrock llm.BedrockConverseAPI
	if bootstrap.NeedsBedrock(cfg) {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			log.Fatalf("load aws config: %v", err)
		}
		bedrock = mainconfig.NewBedrockClient(awsCfg, cfg)
	}

	client, closeLLM, err := bootstrap.BuildLLMClient(ctx, cfg, bedrock, logger)
	if err != nil {
		log.Fatalf("build llm client: %v", err)
	}
	defer closeLLM()
	if client == nil {
		log.Fatal("no model provider configured (set LLM_PROVIDER)")
	}

	text := sampleMessage
	if len(os.Args) > 1 {
		text = strings.Join(os.Args[1:], " ")
	}
	fmt.Printf("Provider: %s (fallback: %s)\n", cfg.LLMProvider, orNone(cfg.LLMFallbackProvider))
	if err := probe(ctx, client, os.Stdout, text); err != nil {
		log.Fatal(err)
	}
}

// probe runs the classifier and the mediator once each against client.
func probe(ctx context.Context, client llm.Client, out io.Writer, text string) error {
	msg := emotion.Message{Sender: "probe", Text: text, Timestamp: time.Now()}

	fmt.Fprintf(out, "\n[1] Emotion classifier\n")
	start := time.Now()
	cls, err := emotion.NewLLMClassifier(client, "").Classify(ctx, emotion.ClassifyRequest{Message: msg})
	if err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	fmt.Fprintf(out, "    ok in %v: emotion=%s stress=%d confidence=%d triggers=%v\n",
		time.Since(start).Round(time.Millisecond), cls.CurrentEmotion, cls.StressLevel, cls.Confidence, cls.Triggers)

	fmt.Fprintf(out, "\n[2] Mediator\n")
	pm := codelayer.NewParser().Parse(ctx, codelayer.Message{Text: text, SenderID: msg.Sender}, codelayer.ParsingContext{SenderID: msg.Sender})
	fmt.Fprintf(out, "    code layer: conflict=%s transmit=%v\n", pm.Assessment.ConflictPotential, pm.Assessment.Transmit)

	start = time.Now()
	resp, err := mediation.NewLLMMediator(client, "").Generate(ctx, mediation.GenerateRequest{
		Parsed:  pm,
		Urgency: mediation.UrgencyFor(0),
	})
	if err != nil {
		return fmt.Errorf("mediator: %w", err)
	}
	fmt.Fprintf(out, "    ok in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(out, "    personal: %s\n    rewrite1: %s\n    rewrite2: %s\n    tip:      %s\n",
		resp.PersonalMessage, resp.Rewrite1, resp.Rewrite2, resp.Tip)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
