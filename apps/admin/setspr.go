package main

import (
	"context"

	"github.com/Hexmon/e-dossier-sub006/core"
	"github.com/Hexmon/e-dossier-sub006/core/performance"
)

type setSprInput struct {
	OCID     string                `json:"oc" validate:"notblank"`
	ActorID  string                `json:"actor" validate:"notblank"`
	Semester int                   `json:"semester"`
	Update   performance.UpdateSpr `json:"-"`
}

func (cli *commandLine) setSpr(in setSprInput) error {
	if err := core.Validate.Struct(in); err != nil {
		return core.ValidationErrorFrom(err)
	}
	view, err := cli.perfSvc.UpsertSprView(context.Background(), in.ActorID, in.OCID, in.Semester, in.Update)
	if err != nil {
		return err
	}
	return cli.printSpr(view)
}
