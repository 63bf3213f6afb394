package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "smartloans/internal/adapter/http"
	"smartloans/internal/adapter/middleware"
	"smartloans/internal/adapter/repository/mysql"
	"smartloans/internal/config"
	"smartloans/internal/domain/account"
	"smartloans/internal/domain/approval"
	"smartloans/internal/domain/loan"
	"smartloans/internal/domain/user"
	"smartloans/internal/infrastructure/cache"
	"smartloans/internal/infrastructure/db"
	"smartloans/internal/infrastructure/ethrpc"
	"smartloans/internal/usecase/auth"
	loanuc "smartloans/internal/usecase/loan"
	"smartloans/internal/usecase/sweep"
	"smartloans/internal/usecase/transfer"
	"smartloans/internal/worker"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := gdb.AutoMigrate(&user.User{}, &account.Account{}, &loan.Loan{}, &approval.Approval{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	ledgerClient := ethrpc.New(cfg.EthRPCURL,
		ethrpc.WithConfirmTimeout(cfg.EthConfirmTimeout),
		ethrpc.WithPollInterval(cfg.EthConfirmPollEvery),
	)

	users := mysql.NewUserRepository(gdb)
	accounts := mysql.NewAccountRepository(gdb)
	loans := mysql.NewLoanRepository(gdb)
	uow := mysql.NewGormUoW(gdb)

	transferUC := transfer.NewUsecase(users, accounts, uow, ledgerClient)
	authUC := auth.NewUsecase(users, accounts, uow, ledgerClient, cfg.JWTSecret, cfg.TokenTTL)
	loanUC := loanuc.NewUsecase(loans, accounts, uow, transferUC, cfg.AdminUserID, cfg.LoanTermUnit)
	sweepUC := sweep.NewUsecase(loans, accounts, users, uow, transferUC, ledgerClient, cfg.AdminUserID)

	h := httpadp.NewHandler()
	authH := httpadp.NewAuthHandler(authUC)
	accountH := httpadp.NewAccountHandler(authUC, transferUC)
	loanH := httpadp.NewLoanHandler(loanUC)
	adminH := httpadp.NewAdminHandler(authUC, loanUC, sweepUC)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	authn := middleware.Auth(authUC)
	admin := middleware.RequireAdmin()
	idemp := middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	e.GET("/health", h.Health)
	e.POST("/auth/register", authH.Register)
	e.POST("/auth/login", authH.Login)

	e.POST("/accounts", accountH.OpenAccount, authn)
	e.GET("/accounts/me", accountH.GetAccount, authn)
	e.POST("/accounts/me/refresh", accountH.RefreshBalance, authn)
	e.POST("/transfers", accountH.Transfer, authn, idemp)

	e.POST("/loans", loanH.RequestLoan, authn, idemp)
	e.GET("/loans/:loan_id", loanH.GetLoan, authn)
	e.POST("/loans/:loan_id/repay", loanH.RepayLoan, authn, idemp)

	e.GET("/admin/users", adminH.ListUsers, authn, admin)
	e.DELETE("/admin/users/:user_id", adminH.DeleteUser, authn, admin)
	e.GET("/admin/accounts", adminH.ListAccounts, authn, admin)
	e.GET("/admin/loans", adminH.ListLoans, authn, admin)
	e.POST("/admin/loans/:loan_id/approve", adminH.ApproveLoan, authn, admin, idemp)
	e.POST("/admin/loans/:loan_id/reject", adminH.RejectLoan, authn, admin)
	e.DELETE("/admin/loans/:loan_id", adminH.DeleteLoan, authn, admin)
	e.GET("/admin/loans/overdue", adminH.OverdueReport, authn, admin)
	e.POST("/admin/loans/overdue/collect", adminH.CollectOverdue, authn, admin, idemp)

	sweeper := worker.NewSweeper(sweepUC, cfg.SweepInterval, cfg.SweepCollect)
	sweeper.Start()

	go func() {
		addr := ":" + cfg.AppPort
		log.Printf("listening on %s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sweeper.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	_ = rdb.Close()
}
