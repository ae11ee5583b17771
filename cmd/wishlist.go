package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// WishlistList prints the wishlisted movies.
func (r *Runner) WishlistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	movies, err := r.catalog.Wishlist(ctx)
	if err != nil {
		return err
	}
	return r.writeMovies("Wishlist", movies, cmd.String("format"), cmd.String("output"))
}

// WishlistAdd flags a movie.
func (r *Runner) WishlistAdd(ctx context.Context, cmd *cli.Command) error {
	return r.setWishlist(ctx, cmd, true)
}

// WishlistRemove clears a movie's flag.
func (r *Runner) WishlistRemove(ctx context.Context, cmd *cli.Command) error {
	return r.setWishlist(ctx, cmd, false)
}

func (r *Runner) setWishlist(ctx context.Context, cmd *cli.Command, flag bool) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	// unknown ids would otherwise update nothing and report success
	movie, err := r.catalog.MovieByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.catalog.UpdateWishlistStatus(ctx, id, flag); err != nil {
		return err
	}

	count, err := r.catalog.WishlistCount(ctx)
	if err != nil {
		return err
	}

	if flag {
		return r.writePlain("♥ Added %q to the wishlist (%d movies)\n", movie.Title, count)
	}
	return r.writePlain("✓ Removed %q from the wishlist (%d movies)\n", movie.Title, count)
}

// WishlistCount prints the number of wishlisted movies.
func (r *Runner) WishlistCount(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	count, err := r.catalog.WishlistCount(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("%d\n", count)
}
