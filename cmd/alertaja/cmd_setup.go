package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"alertaja/internal/models"
	"alertaja/internal/service"

	"github.com/spf13/cobra"
)

var (
	setupAgeRange string
	setupProvince string
	setupCity     string
	setupPin      string
	setupContacts []string
	setupDisguise string

	contactPolice   bool
	contactWhatsApp string
	contactTelegram string

	setupCmd = &cobra.Command{
		Use:   "setup",
		Short: "Complete onboarding: profile, PIN, contacts and disguise",
		Example: `  alertaja setup --age-range 25-34 --province Luanda --pin 1234 \
    --contact "Maria=923000001" --contact "Polícia=113" --disguise calculator`,
		RunE: runSetup,
	}
	contactsCmd = &cobra.Command{
		Use:   "contacts",
		Short: "Manage emergency contacts",
	}
	contactsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List emergency contacts",
		RunE:  runContactsList,
	}
	contactsAddCmd = &cobra.Command{
		Use:   "add NAME PHONE",
		Short: "Add an emergency contact",
		Args:  cobra.ExactArgs(2),
		RunE:  runContactsAdd,
	}
	contactsRemoveCmd = &cobra.Command{
		Use:   "remove ID",
		Short: "Remove an emergency contact",
		Args:  cobra.ExactArgs(1),
		RunE:  runContactsRemove,
	}
	pinCmd = &cobra.Command{
		Use:   "pin NEW_PIN",
		Short: "Change the unlock PIN",
		Args:  cobra.ExactArgs(1),
		RunE:  runPin,
	}
)

func init() {
	f := setupCmd.Flags()
	f.StringVar(&setupAgeRange, "age-range", "", "age range, e.g. 25-34")
	f.StringVar(&setupProvince, "province", "", "province")
	f.StringVar(&setupCity, "city", "", "city")
	f.StringVar(&setupPin, "pin", "", "unlock PIN (digits)")
	f.StringArrayVar(&setupContacts, "contact", nil, `contact as "Name=Phone", append ",police" for a police contact`)
	f.StringVar(&setupDisguise, "disguise", string(models.DefaultDisguise), "calculator, notes or clock")

	contactsAddCmd.Flags().BoolVar(&contactPolice, "police", false, "contact is a police officer or station")
	contactsAddCmd.Flags().StringVar(&contactWhatsApp, "whatsapp", "", "WhatsApp number")
	contactsAddCmd.Flags().StringVar(&contactTelegram, "telegram", "", "Telegram username")
	contactsCmd.AddCommand(contactsListCmd, contactsAddCmd, contactsRemoveCmd)
}

// parseContactFlag 解析 "Name=Phone[,police]"
func parseContactFlag(s string) (service.ContactInput, error) {
	name, rest, ok := strings.Cut(s, "=")
	if !ok {
		return service.ContactInput{}, fmt.Errorf("invalid contact %q, expected Name=Phone", s)
	}
	phone, flag, _ := strings.Cut(rest, ",")
	return service.ContactInput{
		Name:     name,
		Phone:    phone,
		IsPolice: strings.EqualFold(strings.TrimSpace(flag), "police"),
	}, nil
}

func runSetup(cmd *cobra.Command, args []string) error {
	contacts := make([]service.ContactInput, 0, len(setupContacts))
	for _, s := range setupContacts {
		c, err := parseContactFlag(s)
		if err != nil {
			return err
		}
		contacts = append(contacts, c)
	}

	return withApp(func(ctx context.Context, a *app) error {
		err := a.profile.CompleteOnboarding(ctx, service.OnboardingInput{
			Profile: models.UserProfile{
				AgeRange: setupAgeRange,
				Province: setupProvince,
				City:     setupCity,
			},
			Pin:      service.PinInput{Pin: setupPin, Confirm: setupPin},
			Contacts: contacts,
			Disguise: models.DisguiseType(setupDisguise),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Setup complete: %d contact(s), disguise %s\n", len(contacts), setupDisguise)
		return nil
	})
}

func runContactsList(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPHONE\tPOLICE\tWHATSAPP\tTELEGRAM")
		for _, c := range a.storage.Contacts(ctx) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\n",
				c.ID, c.Name, c.Phone, c.IsPolice, deref(c.WhatsApp), deref(c.Telegram))
		}
		return w.Flush()
	})
}

func runContactsAdd(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		c, err := a.profile.AddContact(ctx, service.ContactInput{
			Name:     args[0],
			Phone:    args[1],
			IsPolice: contactPolice,
			WhatsApp: contactWhatsApp,
			Telegram: contactTelegram,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added contact %s (%s)\n", c.Name, c.ID)
		return nil
	})
}

func runContactsRemove(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		return a.profile.RemoveContact(ctx, args[0])
	})
}

func runPin(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		return a.profile.SetPin(ctx, service.PinInput{Pin: args[0], Confirm: args[0]})
	})
}

// withApp 为一次性命令创建组件并在结束时释放
func withApp(fn func(ctx context.Context, a *app) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	a, err := newApp(ctx, cfg, logger, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
