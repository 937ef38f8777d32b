// Command collyassist wires config.FromEnv into a collyassist.Assistant
// and prints the Colly source it generates for a natural-language
// request, plus the interpreted event list.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ales-tsurko/colly-go/collyassist"
	"github.com/ales-tsurko/colly-go/config"
	"github.com/ales-tsurko/colly-go/eventstream"
)

const maxTicks = 64

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: collyassist <request describing the pattern you want>")
	}
	request := strings.Join(os.Args[1:], " ")

	cfg := config.FromEnv()
	if cfg.OpenAIAPIKey == "" && cfg.GeminiAPIKey == "" {
		log.Fatal("❌ ERROR: neither OPENAI_API_KEY nor GEMINI_API_KEY is set in environment!")
	}

	assistant := collyassist.NewAssistant(cfg)

	ctx := context.Background()
	source, pat, err := assistant.GeneratePattern(ctx, request)
	if err != nil {
		log.Fatalf("❌ assistant error: %v", err)
	}

	fmt.Printf("request: %s\n\ngenerated source:\n%s\n\nevents:\n", request, source)

	for tick := 0; tick < maxTicks; tick++ {
		events, ok := pat.Next()
		if !ok {
			return
		}
		for _, e := range events {
			if e.State != eventstream.On {
				continue
			}
			if e.Value.IsModulation {
				fmt.Printf("  beat=%d tick=%d modulation=%s(%g)\n",
					e.Position.Beat, e.Position.Tick, e.Value.ModulationName, e.Value.ModulationVal)
			} else {
				fmt.Printf("  beat=%d tick=%d pitch=%d\n", e.Position.Beat, e.Position.Tick, e.Value.Pitch)
			}
		}
	}
}
