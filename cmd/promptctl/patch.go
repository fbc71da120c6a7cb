package main

import (
	"flag"
	"fmt"
	"os"

	"promptvault/internal/api"
	"promptvault/internal/apperr"
	"promptvault/internal/prompt"
)

// buildPatch sends only the fields given on the command line. An empty
// value for an optional field clears it.
func buildPatch(fs *flag.FlagSet, c captureFlags, clearRating bool) (api.Patch, error) {
	var p api.Patch
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "content":
			p.Content = &c.content
		case "file":
			b, rerr := os.ReadFile(c.file)
			if rerr != nil {
				err = rerr
				return
			}
			s := string(b)
			p.Content = &s
		case "title":
			p.Title = &c.title
		case "context":
			p.Context = &c.context
		case "description":
			p.Description = &c.description
		case "tags":
			tags := prompt.ParseTags(c.tags)
			if tags == nil {
				tags = []string{}
			}
			p.Tags = &tags
		case "tool":
			p.AITool = &c.tool
		case "use-case":
			p.UseCase = &c.useCase
		case "rating":
			p.Rating = &c.rating
		}
	})
	if err != nil {
		return p, err
	}
	if clearRating {
		if p.Rating != nil {
			return p, fmt.Errorf("%w: --rating and --clear-rating are exclusive", apperr.ErrValidation)
		}
		p.ClearRating = true
	}
	return p, nil
}
