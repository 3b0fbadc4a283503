// Команда skillswap-admin обслуживает базу Skill Swap из консоли:
// создаёт администраторов, загружает тестовых пользователей и управляет банами.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/rajivgeraev/skillswap-api/internal/config"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/logger"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

const usage = `Использование: skillswap-admin <команда> [флаги]

Команды:
  create-admin --email E --password P [--name N]   создать администратора или повысить пользователя
  seed --file users.yaml                           загрузить пользователей из YAML
  ban --email E [--unban]                          забанить или разбанить пользователя
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "ошибка: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	flagSet := pflag.NewFlagSet(command, pflag.ContinueOnError)

	var (
		email    string
		password string
		name     string
		file     string
		unban    bool
	)

	switch command {
	case "create-admin":
		flagSet.StringVar(&email, "email", "", "email администратора")
		flagSet.StringVar(&password, "password", "", "пароль (не короче 6 символов)")
		flagSet.StringVar(&name, "name", "Administrator", "имя")
	case "seed":
		flagSet.StringVarP(&file, "file", "f", "", "YAML-файл с пользователями")
	case "ban":
		flagSet.StringVar(&email, "email", "", "email пользователя")
		flagSet.BoolVar(&unban, "unban", false, "снять бан")
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		return fmt.Errorf("неизвестная команда %q\n\n%s", command, usage)
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logger.New(true)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := db.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	hasher := utils.NewPasswordHasher(0)

	switch command {
	case "create-admin":
		user, created, err := createAdmin(ctx, store, hasher, email, password, name)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("создан администратор %s (%s)\n", user.Email, user.ID)
		} else {
			fmt.Printf("пользователь %s повышен до администратора\n", user.Email)
		}
	case "seed":
		if file == "" {
			return errors.New("нужен флаг --file")
		}
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()

		result, err := seedUsers(ctx, store, hasher, f)
		if err != nil {
			return err
		}
		fmt.Printf("создано пользователей: %d, пропущено существующих: %d\n", result.Created, result.Skipped)
	case "ban":
		user, err := setBanned(ctx, store, email, !unban)
		if err != nil {
			return err
		}
		fmt.Printf("%s: is_banned=%v\n", user.Email, user.IsBanned)
	}
	return nil
}
