package service

import (
	"autoservice/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// OrderTotals 工单金额汇总
type OrderTotals struct {
	WorksTotal    float64 `json:"works_total"`    // 工时合计
	ExpensesPrice float64 `json:"expenses_price"` // 配件售价合计（含加价）
	MarkupTotal   float64 `json:"markup_total"`   // 配件加价利润
	TotalAmount   float64 `json:"total_amount"`   // 工单总额
}

// CalculateOrderTotals 计算工单金额，纯函数
// 成本不大于 0 的配件整项跳过，既不计售价也不计加价
func CalculateOrderTotals(works []models.OrderWork, expenses []models.OrderExpense) OrderTotals {
	worksTotal := sumWorks(works)
	expensesPrice, markupTotal := sumExpenses(expenses)

	return OrderTotals{
		WorksTotal:    worksTotal.InexactFloat64(),
		ExpensesPrice: expensesPrice.InexactFloat64(),
		MarkupTotal:   markupTotal.InexactFloat64(),
		TotalAmount:   worksTotal.Add(expensesPrice).InexactFloat64(),
	}
}

// sumWorks 工时合计，保留两位小数
func sumWorks(works []models.OrderWork) decimal.Decimal {
	total := decimal.Zero
	for _, w := range works {
		total = total.Add(lineTotal(w.Quantity, w.PricePerUnit))
	}
	return total.Round(2)
}

// sumExpenses 配件售价合计与加价合计，均保留两位小数
func sumExpenses(expenses []models.OrderExpense) (price, markup decimal.Decimal) {
	price, markup = decimal.Zero, decimal.Zero
	for _, e := range expenses {
		if e.CostPerUnit <= 0 {
			continue
		}
		cost := lineTotal(e.Quantity, e.CostPerUnit)
		itemPrice := cost.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(e.MarkupPercent).Div(hundred)))
		price = price.Add(itemPrice)
		markup = markup.Add(itemPrice.Sub(cost))
	}
	return price.Round(2), markup.Round(2)
}

// lineTotal 数量 × 单价
func lineTotal(quantity, unit float64) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unit))
}

// commission 提成金额 = 工时合计 × 提成比例 / 100，保留两位小数
func commission(worksTotal, rate float64) decimal.Decimal {
	return decimal.NewFromFloat(worksTotal).Mul(decimal.NewFromFloat(rate)).Div(hundred).Round(2)
}

// round2 金额保留两位小数
// 按十进制值四舍五入，恰好一半时远离零进位：2.675 -> 2.68
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
