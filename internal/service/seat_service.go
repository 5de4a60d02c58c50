package service

import (
	"context"
	"strconv"
	"strings"

	"go-ticketing-platform/internal/model"
	"go-ticketing-platform/internal/repository"
	apperrors "go-ticketing-platform/pkg/app_errors"
)

// GenerateSeatsParams 批次產生座位的範圍參數。
// 列範圍可為數字（"1".."12"）或字母（"A".."F"）。
type GenerateSeatsParams struct {
	VenueID     int
	Block       string
	SeatType    model.SeatType
	RowStart    string
	RowEnd      string
	NumberStart int
	NumberEnd   int
}

type SeatService interface {
	// GenerateSeats 批次建立座位，回傳建立數量
	GenerateSeats(ctx context.Context, params GenerateSeatsParams) (int, error)
	ListAvailable(ctx context.Context, venueID int) ([]*model.Seat, error)
}

type SeatServiceImpl struct {
	seats repository.SeatRepository
}

func NewSeatService(seats repository.SeatRepository) SeatService {
	return &SeatServiceImpl{seats: seats}
}

// expandRows 展開列範圍。兩端皆為數字時走數值範圍，否則視為單一字母範圍
func expandRows(start, end string) ([]string, error) {
	if start == "" || end == "" {
		return nil, apperrors.ErrInvalidInput
	}

	startNum, startErr := strconv.Atoi(start)
	endNum, endErr := strconv.Atoi(end)
	if startErr == nil && endErr == nil {
		if startNum > endNum {
			return nil, apperrors.ErrInvalidInput
		}
		rows := make([]string, 0, endNum-startNum+1)
		for i := startNum; i <= endNum; i++ {
			rows = append(rows, strconv.Itoa(i))
		}
		return rows, nil
	}

	// 字母排只支援單一字母，"AA" 這種範圍不猜
	if len(start) != 1 || len(end) != 1 {
		return nil, apperrors.ErrInvalidInput
	}
	startCh := strings.ToUpper(start)[0]
	endCh := strings.ToUpper(end)[0]
	if startCh < 'A' || startCh > 'Z' || endCh < 'A' || endCh > 'Z' || startCh > endCh {
		return nil, apperrors.ErrInvalidInput
	}
	rows := make([]string, 0, endCh-startCh+1)
	for ch := startCh; ch <= endCh; ch++ {
		rows = append(rows, string(ch))
	}
	return rows, nil
}

func (s *SeatServiceImpl) GenerateSeats(ctx context.Context, params GenerateSeatsParams) (int, error) {
	if params.NumberStart <= 0 || params.NumberEnd < params.NumberStart {
		return 0, apperrors.ErrInvalidInput
	}

	rows, err := expandRows(params.RowStart, params.RowEnd)
	if err != nil {
		return 0, err
	}

	seats := make([]*model.Seat, 0, len(rows)*(params.NumberEnd-params.NumberStart+1))
	for _, row := range rows {
		for number := params.NumberStart; number <= params.NumberEnd; number++ {
			seats = append(seats, &model.Seat{
				VenueID:  params.VenueID,
				Block:    params.Block,
				Row:      row,
				Number:   strconv.Itoa(number),
				SeatType: params.SeatType,
			})
		}
	}

	return s.seats.BulkCreate(ctx, seats)
}

func (s *SeatServiceImpl) ListAvailable(ctx context.Context, venueID int) ([]*model.Seat, error) {
	return s.seats.ListAvailableByVenue(ctx, venueID)
}
