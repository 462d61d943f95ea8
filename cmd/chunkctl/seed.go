package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// seedChunk is one entry of a seed file, a YAML list of jp/en pairs.
type seedChunk struct {
	JP string `yaml:"jp"`
	EN string `yaml:"en"`
}

var builtinSeed = []seedChunk{
	{JP: "おはようございます。調子はどうですか？", EN: "Good morning. How are you?"},
	{JP: "こんばんは。調子はどうですか？", EN: "Good evening. How are you?"},
	{JP: "えーと、なんて言えばいいかな…", EN: "Let me think for a sec."},
	{JP: "日々のトレーニングの積み重ねが大事だよね", EN: "It's the daily training that matters."},
	{JP: "情報をキャッチアップは頻繁に", EN: "I've got a lot to catch up on information-wise."},
}

func loadSeed(r io.Reader) ([]seedChunk, error) {
	var chunks []seedChunk
	if err := yaml.NewDecoder(r).Decode(&chunks); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return chunks, nil
}

var seedCmd = &cobra.Command{
	Use:   "seed [file.yaml]",
	Short: "Add example chunks",
	Long:  "Add the chunks listed in a YAML seed file, or a handful of built-in examples when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chunks := builtinSeed
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening seed file: %w", err)
			}
			defer func() { _ = f.Close() }()
			if chunks, err = loadSeed(f); err != nil {
				return err
			}
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		for i, sc := range chunks {
			c, err := a.chunks.AddChunk(cmd.Context(), a.userID, sc.JP, sc.EN)
			if err != nil {
				return fmt.Errorf("seed entry %d: %w", i+1, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded: %s -> %s, id=%d\n", c.JPPrompt, c.ENAnswer, c.ID)
		}
		return nil
	},
}
