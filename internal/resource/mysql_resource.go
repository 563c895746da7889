package resource

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"video-pipeline/ddd/infrastructure/database/po"
	"video-pipeline/pkg/assert"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
	"video-pipeline/pkg/manager"
)

var (
	mysqlResourceOnce      sync.Once
	singletonMysqlResource *MysqlResource
)

// MysqlResource MySQL资源管理器
type MysqlResource struct {
	db *gorm.DB
}

// DefaultMysqlResource 获取MySQL资源单例
func DefaultMysqlResource() *MysqlResource {
	assert.NotCircular()
	mysqlResourceOnce.Do(func() {
		singletonMysqlResource = &MysqlResource{}
	})
	assert.NotNil(singletonMysqlResource)
	return singletonMysqlResource
}

// MustOpen 建立数据库连接并执行表结构迁移
func (r *MysqlResource) MustOpen() {
	if r.db != nil {
		return
	}

	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MysqlResource")
	}

	dbCfg := cfg.Database
	db, err := gorm.Open(mysql.Open(dbCfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect mysql: %v", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Sprintf("failed to get sql.DB: %v", err))
	}
	if dbCfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
	}
	if dbCfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	}
	if dbCfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(
		&po.VideoJob{},
		&po.SegmentUpload{},
		&po.TranscodeTask{},
	); err != nil {
		panic(fmt.Sprintf("failed to migrate tables: %v", err))
	}

	r.db = db

	logger.Info("MySQL resource initialized", map[string]interface{}{
		"host":     dbCfg.Host,
		"port":     dbCfg.Port,
		"database": dbCfg.Database,
	})
}

// MainDB 获取主库连接
func (r *MysqlResource) MainDB() *gorm.DB {
	return r.db
}

// Close 关闭数据库连接
func (r *MysqlResource) Close() {
	if r.db == nil {
		return
	}
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// MysqlResourcePlugin MySQL资源插件
type MysqlResourcePlugin struct{}

func (p *MysqlResourcePlugin) Name() string {
	return "mysqlResource"
}

func (p *MysqlResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultMysqlResource()
}
