package api

import (
	"fmt"
	"sync"

	"autoservice/models"
	"autoservice/service"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验引擎注册业务枚举校验规则
//
//	txtype       income / expense
//	orderstatus  new / in_progress / completed
//	taskpriority high / medium / low
//	taskstatus   pending / in_progress / completed
//	period       day / week / month / year
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		rules := map[string][]string{
			"txtype":       {models.TransactionIncome, models.TransactionExpense},
			"orderstatus":  models.OrderStatuses(),
			"taskpriority": {models.TaskPriorityHigh, models.TaskPriorityMedium, models.TaskPriorityLow},
			"taskstatus":   {models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted},
			"period":       {service.PeriodDay, service.PeriodWeek, service.PeriodMonth, service.PeriodYear},
		}
		if err := registerRules(v, rules); err != nil {
			panic(err)
		}
	})
}

// registerRules 注册枚举校验规则，任一规则注册失败即返回
func registerRules(v *validator.Validate, rules map[string][]string) error {
	for tag, allowed := range rules {
		if err := v.RegisterValidation(tag, oneOf(allowed)); err != nil {
			return fmt.Errorf("注册校验规则 %q 失败: %w", tag, err)
		}
	}
	return nil
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}
