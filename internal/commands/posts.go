package commands

import (
	"context"
	"flag"
	"fmt"
	"ursa/internal/output"
)

type postsFlags struct {
	postID       int64
	withComments bool
	file         string
	format       string
}

func (a *App) setupPostsFlags() (*flag.FlagSet, *postsFlags) {
	fs := a.newFlagSet("posts")
	flags := &postsFlags{}

	fs.Int64Var(&flags.postID, "post-id", 0, "the id of a single post to fetch")
	fs.Int64Var(&flags.postID, "p", 0, "shorthand for --post-id")
	fs.BoolVar(&flags.withComments, "with-comments", false, "include comments when fetching a single post")
	fs.BoolVar(&flags.withComments, "w", false, "shorthand for --with-comments")
	fs.StringVar(&flags.file, "file", "", "write to this file instead of to the console")
	fs.StringVar(&flags.format, "format", string(output.FormatJSON), "output format: json or yaml")

	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintf(out, "Usage: ursa posts [flags]\n\n")
		_, _ = fmt.Fprintf(out, "Fetch all posts, or a single post and optionally its comments.\n\n")
		_, _ = fmt.Fprintf(out, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(out, "\nExamples:\n")
		_, _ = fmt.Fprintf(out, "  ursa posts\n")
		_, _ = fmt.Fprintf(out, "  ursa posts --post-id 1 --with-comments\n")
	}

	return fs, flags
}

func (a *App) HandlePosts(ctx context.Context, args []string) error {
	fs, flags := a.setupPostsFlags()

	ok, err := parseFlags(fs, args)
	if !ok {
		return err
	}

	if fs.NArg() != 0 {
		return usageError(fs, "posts takes no arguments (got %q)", fs.Args())
	}

	if flags.postID < 0 {
		return usageError(fs, "post id must be positive (got %d)", flags.postID)
	}

	format, err := output.ParseFormat(flags.format)
	if err != nil {
		return usageError(fs, "%v", err)
	}

	client := a.client()
	writer := a.writer(format, false)

	if flags.postID == 0 {
		if flags.withComments {
			a.log.WarnContext(ctx, "Comments are only fetched for a single post",
				"flag", "--with-comments")
		}

		posts, postsErr := client.Posts(ctx)
		if postsErr != nil {
			return fmt.Errorf("fetch posts: %w", postsErr)
		}

		return writer.Write(ctx, posts, flags.file)
	}

	post, err := client.PostWithComments(ctx, flags.postID, flags.withComments)
	if err != nil {
		return fmt.Errorf("fetch post: %w", err)
	}

	return writer.WriteRecord(ctx, post, flags.file)
}
