package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/domain"
	"storefront/internal/service"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var in service.RegisterInput
	c := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			u, err := a.Session.Register(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registration successful. Please login as %s\n", u.Email)
			return nil
		}),
	}
	c.Flags().StringVar(&in.Username, "username", "", "username (at least 3 characters)")
	c.Flags().StringVar(&in.Email, "email", "", "email address")
	c.Flags().StringVar(&in.Password, "password", "", "password (at least 6 characters)")
	c.Flags().StringVar(&in.ConfirmPassword, "confirm-password", "", "password again")
	return c
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string
	c := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache the session",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			u, err := a.Session.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s\n", u.Username)
			return nil
		}),
	}
	c.Flags().StringVar(&email, "email", "", "email address")
	c.Flags().StringVar(&password, "password", "", "password")
	return c
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached session",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			if err := a.Session.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			u := a.Session.Current()
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s cart=%d wishlist=%d\n",
				u.Username, u.Email, u.Role, a.Cart.Count(), a.Wishlist.Count())
			return nil
		}),
	}
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "profile",
		Short: "Show the profile, refreshed from the server",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			u, err := a.Session.Refresh(ctx)
			if err != nil {
				return err
			}
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username: %s\nEmail: %s\nOrders: %d\n", u.Username, u.Email, len(u.Orders))
			if u.Address != nil {
				fmt.Fprintf(out, "Address: %s, %s, %s %s (%s)\n",
					u.Address.FullName, u.Address.Address, u.Address.City, u.Address.Pincode, u.Address.MobileNumber)
			}
			return nil
		}),
	}
	c.AddCommand(newProfileUpdateCmd(opts))
	return c
}

func newProfileUpdateCmd(opts *rootOptions) *cobra.Command {
	var in service.ProfileUpdate
	var addr domain.Address
	c := &cobra.Command{
		Use:   "update",
		Short: "Replace profile fields",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			cur := a.Session.Current()
			if cur == nil {
				return service.ErrNotAuthenticated
			}
			if !cmd.Flags().Changed("username") {
				in.Username = cur.Username
			}
			if !cmd.Flags().Changed("email") {
				in.Email = cur.Email
			}
			if !cmd.Flags().Changed("image") {
				in.ProfileImage = cur.ProfileImage
			}
			if addressFlagsChanged(cmd) {
				merged := changedAddress(cmd, cur.Address, addr)
				in.Address = &merged
			}
			u, err := a.Session.UpdateProfile(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile updated for %s\n", u.Username)
			return nil
		}),
	}
	c.Flags().StringVar(&in.Username, "username", "", "new username")
	c.Flags().StringVar(&in.Email, "email", "", "new email")
	c.Flags().StringVar(&in.Password, "password", "", "new password (empty keeps the current one)")
	c.Flags().StringVar(&in.ProfileImage, "image", "", "profile image URL")
	addAddressFlags(c, &addr)
	return c
}

func addAddressFlags(c *cobra.Command, a *domain.Address) {
	c.Flags().StringVar(&a.FullName, "full-name", "", "recipient name")
	c.Flags().StringVar(&a.Address, "address", "", "street address")
	c.Flags().StringVar(&a.City, "city", "", "city")
	c.Flags().StringVar(&a.Pincode, "pincode", "", "6-digit pincode")
	c.Flags().StringVar(&a.MobileNumber, "mobile", "", "10-digit mobile number")
}

var addressFlagNames = []string{"full-name", "address", "city", "pincode", "mobile"}

func addressFlagsChanged(cmd *cobra.Command) bool {
	for _, name := range addressFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// changedAddress lays the address flags that were actually passed over base
func changedAddress(cmd *cobra.Command, base *domain.Address, flags domain.Address) domain.Address {
	out := base.Overlay(domain.Address{})
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("full-name", &out.FullName, flags.FullName)
	set("address", &out.Address, flags.Address)
	set("city", &out.City, flags.City)
	set("pincode", &out.Pincode, flags.Pincode)
	set("mobile", &out.MobileNumber, flags.MobileNumber)
	return out
}
