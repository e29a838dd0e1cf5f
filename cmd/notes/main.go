package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/beleske/beleske/internal/config"
	"github.com/beleske/beleske/internal/logging"
	"github.com/beleske/beleske/internal/notes"

	log "github.com/sirupsen/logrus"
)

// notes CLI - talks to the configured backend, or keeps everything in
// the local on-device store when no backend address is set
//
// usage:
//	notes list [query]
//	notes get <id>
//	notes add -title <t> -content <c> -tags <a,b>
//	notes update <id> [-title <t>] [-content <c>] [-tags <a,b>]
//	notes rm <id>

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Printf("load config: %s\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogLevel:    cfg.LogLevel,
		LogToStdout: false,
		LogFileName: cfg.LogsPath,
		Environment: cfg.Environment,
	})

	api, err := notes.NewApi(cfg)
	if err != nil {
		log.Fatalf("create notes api: %s", err)
	}
	store := notes.NewStore(api)

	// print the fresh list after every mutation
	unsubscribe := store.Subscribe(func() {
		printNotes(store.Notes())
	})
	defer unsubscribe()

	ctx := context.Background()
	if err := run(ctx, store, flag.Args()); err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, store *notes.Store, args []string) error {
	if len(args) == 0 {
		return store.Refresh(ctx)
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "list":
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		return store.SetQuery(ctx, query)
	case "get":
		if len(args) != 1 {
			return fmt.Errorf("usage: notes get <id>")
		}
		if err := store.Refresh(ctx); err != nil {
			return err
		}
		for _, n := range store.Notes() {
			if n.ID == args[0] {
				fmt.Printf("%s\n%s\ntags: %s\ncreated: %s\nupdated: %s\n",
					n.Title, n.Content, strings.Join(n.Tags, ", "),
					n.CreatedAt.Format("2006-01-02 15:04:05"),
					n.UpdatedAt.Format("2006-01-02 15:04:05"),
				)
				return nil
			}
		}
		return notes.ErrNoteNotFound
	case "add":
		return addNote(ctx, store, args)
	case "update":
		return updateNote(ctx, store, args)
	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: notes rm <id>")
		}
		return store.Remove(ctx, args[0])
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func addNote(ctx context.Context, store *notes.Store, args []string) error {
	addFlags := flag.NewFlagSet("add", flag.ExitOnError)
	title := addFlags.String("title", "", "note title")
	content := addFlags.String("content", "", "note content")
	tags := addFlags.String("tags", "", "comma separated tags")
	if err := addFlags.Parse(args); err != nil {
		return err
	}

	added, err := store.Create(ctx, notes.CreateNoteInput{
		Title:   *title,
		Content: *content,
		Tags:    splitTags(*tags),
	})
	if err != nil {
		return err
	}

	fmt.Printf("added: %s\n", added.ID)
	return nil
}

func updateNote(ctx context.Context, store *notes.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: notes update <id> [flags]")
	}
	id, args := args[0], args[1:]

	updateFlags := flag.NewFlagSet("update", flag.ExitOnError)
	title := updateFlags.String("title", "", "note title")
	content := updateFlags.String("content", "", "note content")
	tags := updateFlags.String("tags", "", "comma separated tags")
	if err := updateFlags.Parse(args); err != nil {
		return err
	}

	// only flags given on the command line end up in the update
	var input notes.UpdateNoteInput
	updateFlags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			input.Title = title
		case "content":
			input.Content = content
		case "tags":
			input.Tags = splitTags(*tags)
		}
	})

	updated, err := store.Update(ctx, id, input)
	if err != nil {
		return err
	}

	fmt.Printf("updated: %s\n", updated.ID)
	return nil
}

func splitTags(tags string) []string {
	if tags == "" {
		return []string{}
	}
	split := strings.Split(tags, ",")
	for i := range split {
		split[i] = strings.TrimSpace(split[i])
	}
	return split
}

func printNotes(all []notes.Note) {
	if len(all) == 0 {
		fmt.Println("no notes")
		return
	}
	for _, n := range all {
		tags := ""
		if len(n.Tags) > 0 {
			tags = " [" + strings.Join(n.Tags, ", ") + "]"
		}
		fmt.Printf("%s  %s%s\n    %s\n", n.ID, n.Title, tags, n.Content)
	}
}
