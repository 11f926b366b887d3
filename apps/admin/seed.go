package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
)

type (
	seedFile struct {
		Owners    []seedOwner    `yaml:"owners"`
		Resources []seedResource `yaml:"resources"`
	}

	seedOwner struct {
		Email string `yaml:"email"`
		Name  string `yaml:"name"`
	}

	seedResource struct {
		Title       string       `yaml:"title"`
		Description string       `yaml:"description"`
		Category    string       `yaml:"category"`
		Owner       string       `yaml:"owner"`
		Reviews     []seedReview `yaml:"reviews"`
	}

	seedReview struct {
		Author  string `yaml:"author"`
		Rating  int    `yaml:"rating"`
		Comment string `yaml:"comment"`
		Repeat  int    `yaml:"repeat"` // submit the same review this many times; 0 means once
	}

	seedSummary struct {
		Owners    int `json:"owners"`
		Resources int `json:"resources"`
		Reviews   int `json:"reviews"`
	}
)

func (cli *commandLine) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed --file catalog.yaml",
		Short: "Load owners, resources and reviews from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return cli.help(cmd, args)
			}
			return cli.seed(file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path of the YAML catalog to load.")
	return cmd
}

func readSeedFile(path string) (seedFile, error) {
	var sf seedFile
	data, err := os.ReadFile(path)
	if err != nil {
		return sf, errors.Wrap(err, "reading seed file")
	}
	if err = yaml.Unmarshal(data, &sf); err != nil {
		return sf, errors.Wrapf(err, "parsing %s", path)
	}
	return sf, nil
}

// seed goes through the services so validation and moderation apply. Owners already registered are kept.
func (cli *commandLine) seed(path string) error {
	sf, err := readSeedFile(path)
	if err != nil {
		return err
	}
	ctx := context.Background()
	var sum seedSummary

	for _, so := range sf.Owners {
		if _, err = cli.catalogSvc.GetOwner(ctx, so.Email); err == nil {
			continue
		} else if !core.IsNotFound(err) {
			return errors.Wrapf(err, "finding owner %s", so.Email)
		}
		if _, err = cli.catalogSvc.RegisterOwner(ctx, catalog.NewOwner{Email: so.Email, Name: so.Name}); err != nil {
			return errors.Wrapf(err, "registering owner %s", so.Email)
		}
		sum.Owners++
	}

	for _, sr := range sf.Resources {
		res, err := cli.catalogSvc.Publish(ctx, sr.Owner, catalog.NewResource{
			Title:       sr.Title,
			Description: sr.Description,
			Category:    sr.Category,
		})
		if err != nil {
			return errors.Wrapf(err, "publishing %q", sr.Title)
		}
		sum.Resources++

		for _, sv := range sr.Reviews {
			n := max(sv.Repeat, 1)
			for i := 0; i < n; i++ {
				if _, err = cli.reviewSvc.Submit(ctx, review.NewReview{
					ResourceID: res.ID,
					Author:     sv.Author,
					Rating:     sv.Rating,
					Comment:    sv.Comment,
				}); err != nil {
					return errors.Wrapf(err, "reviewing %q", sr.Title)
				}
				sum.Reviews++
			}
		}
	}

	_, _ = fmt.Fprintf(cli.out, "seeded %d owners, %d resources, %d reviews\n", sum.Owners, sum.Resources, sum.Reviews)
	return nil
}
