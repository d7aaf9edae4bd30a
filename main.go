package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"annoflow/account"
	"annoflow/bizerror"
	"annoflow/domain"
	"annoflow/domain/recheck"
	"annoflow/domain/settle"
	"annoflow/domain/subtask"
	"annoflow/domain/task"
	"annoflow/event"
	"annoflow/persistence"
	"annoflow/session"
	"annoflow/sessions"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}
	debugSQL, _ := strconv.ParseBool(os.Getenv("ANNOFLOW_DEBUG_SQL"))

	if err := settle.ConfigureFromEnv(); err != nil {
		log.Fatalf("parse aggregation config failed %v\n", err)
	}
	if err := recheck.ConfigureFromEnv(); err != nil {
		log.Fatalf("parse recheck config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig, DebugLogging: debugSQL}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB().AutoMigrate(&account.User{}, &domain.AnnotationTask{}, &domain.AnnotationSubtask{},
		&domain.Annotation{}, &settle.SettlementRecord{}, &event.EventRecord{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "annoflow")
	})

	sessions.RegisterSessionsHandler(engine)

	secured := session.SimpleAuthFilter()
	task.RegisterTasksRestAPI(engine, secured)
	subtask.RegisterSubtasksRestAPI(engine, secured)
	recheck.RegisterRecheckRestAPI(engine, secured)
	settle.RegisterSettleRestAPI(engine, secured)
	account.RegisterUsersRestAPI(engine, secured)

	port := os.Getenv("ANNOFLOW_PORT")
	if port == "" {
		port = "80"
	}
	if err := engine.Run(":" + port); err != nil {
		panic(err)
	}
}
