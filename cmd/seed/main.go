package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/auth"
	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/observability"
	"github.com/ticketflow/ticketflow/internal/persistence"
	"github.com/ticketflow/ticketflow/internal/repository"
	"github.com/ticketflow/ticketflow/internal/service"
)

// Seeds a demo dataset: a few users across the three departments plus sample
// tickets. Existing usernames are skipped, so the command is safe to re-run.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	ticketRepo := repository.NewTicketRepository(pg.PoolHandle())

	users := seedUsers(ctx, logger, userRepo, cfg.Auth.BcryptCost)
	seedTickets(ctx, logger, ticketRepo, users)

	logger.Info("seed complete")
}

type seedUser struct {
	Username           string
	Name               string
	Role               string
	Department         string
	ManagedDepartments []domain.Department
	IsManager          bool
}

func seedUsers(ctx context.Context, logger *zap.Logger, repo repository.UserRepository, bcryptCost int) map[string]*domain.User {
	defs := []seedUser{
		{Username: "admin", Name: "System Administrator", Role: "Admin Manager", Department: "ADMIN",
			ManagedDepartments: []domain.Department{domain.DepartmentAdmin, domain.DepartmentFinance, domain.DepartmentHR}, IsManager: true},
		{Username: "hr_manager", Name: "Priya Sharma", Role: "Senior HR Executive", Department: "HR",
			ManagedDepartments: []domain.Department{domain.DepartmentHR}, IsManager: true},
		{Username: "finance_manager", Name: "Rahul Verma", Role: "Finance Manager", Department: "Finance",
			ManagedDepartments: []domain.Department{domain.DepartmentFinance}, IsManager: true},
		{Username: "hr_junior", Name: "Anita Desai", Role: "HR Assistant", Department: "HR",
			ManagedDepartments: nil, IsManager: false},
		{Username: "john_doe", Name: "John Doe", Role: "Software Engineer", Department: "Engineering",
			ManagedDepartments: nil, IsManager: false},
		{Username: "jane_smith", Name: "Jane Smith", Role: "Accountant", Department: "Finance",
			ManagedDepartments: nil, IsManager: false},
	}

	hashed, err := auth.HashPassword("password", bcryptCost)
	if err != nil {
		logger.Fatal("failed to hash seed password", zap.Error(err))
	}

	out := make(map[string]*domain.User, len(defs))
	for _, def := range defs {
		if existing, err := repo.GetByUsername(ctx, def.Username); err == nil {
			logger.Info("user exists, skipping", zap.String("username", def.Username))
			out[def.Username] = existing
			continue
		}

		dept := def.Department
		user := &domain.User{
			Username:           def.Username,
			PasswordHash:       hashed,
			Name:               def.Name,
			Role:               def.Role,
			Department:         &dept,
			ManagedDepartments: def.ManagedDepartments,
			IsManager:          def.IsManager,
		}
		if err := repo.Create(ctx, user); err != nil {
			logger.Fatal("failed to create user", zap.String("username", def.Username), zap.Error(err))
		}
		logger.Info("created user", zap.String("username", def.Username))
		out[def.Username] = user
	}
	return out
}

type seedTicket struct {
	Creator     string
	Subject     string
	Description string
	Department  domain.Department
	Priority    domain.TicketPriority
	Status      domain.TicketStatus
	Category    string
	Subcategory string
}

func seedTickets(ctx context.Context, logger *zap.Logger, repo repository.TicketRepository, users map[string]*domain.User) {
	defs := []seedTicket{
		{Creator: "john_doe", Subject: "need my leave balance", Description: "Please share my remaining casual leave count for this year.",
			Department: domain.DepartmentHR, Priority: domain.TicketPriorityMedium, Status: domain.TicketStatusOpen,
			Category: "Leave & Attendance", Subcategory: "Leave Balance Query"},
		{Creator: "jane_smith", Subject: "reimbursement pending", Description: "Travel claim from last month has not been paid out yet.",
			Department: domain.DepartmentFinance, Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusInProgress,
			Category: "Payments", Subcategory: "Reimbursement"},
		{Creator: "hr_junior", Subject: "broken chair", Description: "The chair at desk 14 has a broken wheel and needs replacement.",
			Department: domain.DepartmentAdmin, Priority: domain.TicketPriorityLow, Status: domain.TicketStatusOpen,
			Category: "Facilities", Subcategory: "Furniture"},
		{Creator: "john_doe", Subject: "payslip not received", Description: "I did not receive my payslip email for the previous cycle.",
			Department: domain.DepartmentFinance, Priority: domain.TicketPriorityMedium, Status: domain.TicketStatusClosed,
			Category: "Payroll", Subcategory: "Payslip"},
	}

	for _, def := range defs {
		creator, ok := users[def.Creator]
		if !ok {
			continue
		}
		category := def.Category
		subcategory := def.Subcategory
		ticket := &domain.Ticket{
			Subject:     service.StoredSubject(def.Subject, &category, &subcategory),
			Description: def.Description,
			Department:  def.Department,
			Priority:    def.Priority,
			Status:      def.Status,
			Category:    &category,
			Subcategory: &subcategory,
			CreatedBy:   creator.ID,
		}
		if err := repo.Create(ctx, ticket); err != nil {
			logger.Fatal("failed to create ticket", zap.String("subject", def.Subject), zap.Error(err))
		}
		logger.Info("created ticket", zap.Int64("id", ticket.ID), zap.String("subject", ticket.Subject))
	}
}
