package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"BatallaMedieval/internal/sim/entity"
)

const (
	battleCollection = "battle_report"
	spyCollection    = "spy_report"
)

// ReportRepo 报告文档仓储：战报是嵌套结构、只增不改，放文档库最合适。
type ReportRepo struct {
	battles *mongo.Collection
	spies   *mongo.Collection
}

func NewReportRepo(db *mongo.Database) *ReportRepo {
	return &ReportRepo{
		battles: db.Collection(battleCollection),
		spies:   db.Collection(spyCollection),
	}
}

func (r *ReportRepo) SaveBattleReport(ctx context.Context, report *entity.BattleReport) error {
	if r == nil || r.battles == nil {
		return errors.New("mongodb battle collection is nil")
	}
	_, err := r.battles.InsertOne(ctx, report)
	return err
}

func (r *ReportRepo) SaveSpyReport(ctx context.Context, report *entity.SpyReport) error {
	if r == nil || r.spies == nil {
		return errors.New("mongodb spy collection is nil")
	}
	_, err := r.spies.InsertOne(ctx, report)
	return err
}
