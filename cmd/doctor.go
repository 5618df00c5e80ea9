package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/beacon/internal/config"
)

var (
	doctorOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	doctorBad  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	doctorDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doctorHead = lipgloss.NewStyle().Bold(true)
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check environment, config, and database health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

// runDoctor is a read-only diagnostic: it never mutates config, the
// database, or the bot's presence.
func runDoctor() {
	fmt.Println(doctorHead.Render("beacon doctor"))
	fmt.Printf("  %s %s\n", doctorDim.Render("Version:"), Version)
	fmt.Printf("  %s %s/%s\n", doctorDim.Render("OS:"), runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  %s %s\n", doctorDim.Render("Go:"), runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  %s %s", doctorDim.Render("Config:"), cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" " + doctorBad.Render("(not found, defaults + env will be used)"))
	} else {
		fmt.Println(" " + doctorOK.Render("(found)"))
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  %s %s\n", doctorBad.Render("Config load error:"), err)
		return
	}

	fmt.Println()
	fmt.Println(doctorHead.Render("Discord"))
	if cfg.Discord.Token == "" {
		fmt.Printf("  %s %s\n", doctorDim.Render("Token:"), doctorBad.Render("not set (DISCORD_BOT_TOKEN)"))
	} else {
		fmt.Printf("  %s %s\n", doctorDim.Render("Token:"), doctorOK.Render("configured"))
	}

	fmt.Println()
	fmt.Println(doctorHead.Render("Database"))
	if cfg.Database.PostgresDSN == "" {
		fmt.Printf("  %s %s\n", doctorDim.Render("DSN:"), doctorBad.Render("not set (BEACON_POSTGRES_DSN)"))
	} else {
		checkDatabase(cfg.Database.PostgresDSN)
	}

	fmt.Println()
	fmt.Println("Doctor check complete.")
}

func checkDatabase(dsn string) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		fmt.Printf("  %s %s\n", doctorDim.Render("Status:"), doctorBad.Render("open failed: "+err.Error()))
		return
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fmt.Printf("  %s %s\n", doctorDim.Render("Status:"), doctorBad.Render("connect failed: "+err.Error()))
		return
	}
	fmt.Printf("  %s %s\n", doctorDim.Render("Status:"), doctorOK.Render("connected"))

	m, err := newMigrator(dsn)
	if err != nil {
		fmt.Printf("  %s %s\n", doctorDim.Render("Schema:"), doctorBad.Render("could not load migrations: "+err.Error()))
		return
	}
	defer m.Close()

	v, dirty, err := m.Version()
	if err != nil {
		fmt.Printf("  %s %s\n", doctorDim.Render("Schema:"), doctorBad.Render("no migrations applied yet"))
		return
	}
	if dirty {
		fmt.Printf("  %s %s\n", doctorDim.Render("Schema:"), doctorBad.Render(fmt.Sprintf("v%d (dirty — run: beacon migrate force %d)", v, v-1)))
		return
	}
	fmt.Printf("  %s %s\n", doctorDim.Render("Schema:"), doctorOK.Render(fmt.Sprintf("v%d", v)))

	var settingsRows int
	if err := db.QueryRowContext(context.Background(), "SELECT count(*) FROM bot_settings").Scan(&settingsRows); err == nil {
		fmt.Printf("  %s %d row\n", doctorDim.Render("bot_settings:"), settingsRows)
	}
}
