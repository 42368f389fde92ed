package charts

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/mkirsanov/access_bot/internal/model"
)

// ChartGenerator генерирует графики для статистики платежей
type ChartGenerator struct{}

// NewChartGenerator создает новый генератор графиков
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// GeneratePaymentsChart строит график принятых и отклоненных квитанций по дням
func (g *ChartGenerator) GeneratePaymentsChart(events []model.PaymentEvent) ([]byte, error) {
	if len(events) == 0 {
		return nil, nil // Возвращаем nil, если нет данных для графика
	}

	// Группируем события по дням
	accepted := make(map[time.Time]float64)
	rejected := make(map[time.Time]float64)
	daysSet := make(map[time.Time]struct{})

	for _, event := range events {
		day := event.CreatedAt.Truncate(24 * time.Hour)
		daysSet[day] = struct{}{}
		if event.Verdict == "accepted" {
			accepted[day]++
		} else {
			rejected[day]++
		}
	}

	days := make([]time.Time, 0, len(daysSet))
	for day := range daysSet {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	// go-chart не рисует серию из одной точки
	if len(days) == 1 {
		days = append(days, days[0].Add(24*time.Hour))
	}

	acceptedValues := make([]float64, len(days))
	rejectedValues := make([]float64, len(days))
	for i, day := range days {
		acceptedValues[i] = accepted[day]
		rejectedValues[i] = rejected[day]
	}

	graph := chart.Chart{
		Width:  1200,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02.01"),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Принятые",
				XValues: days,
				YValues: acceptedValues,
				Style: chart.Style{
					StrokeColor: chart.ColorGreen,
					StrokeWidth: 2,
				},
			},
			chart.TimeSeries{
				Name:    "Отклоненные",
				XValues: days,
				YValues: rejectedValues,
				Style: chart.Style{
					StrokeColor: chart.ColorRed,
					StrokeWidth: 2,
				},
			},
		},
	}

	// Добавляем легенду
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		}),
	}

	// Рендерим график
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buffer.Bytes(), nil
}
