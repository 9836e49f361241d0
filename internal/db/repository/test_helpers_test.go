package repository

import "github.com/jackc/pgx/v5/pgtype"

func int4(v int32) pgtype.Int4 {
	return pgtype.Int4{Int32: v, Valid: true}
}
