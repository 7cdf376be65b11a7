// Package sink собирает результаты воркеров в одном процессе-агрегаторе.
//
// # Обзор
//
// Воркеры через Client пушат в endpoint sink конверты mq.Message:
// результат каждого шага сразу по его завершении и отметку о завершении
// сценария. Server принимает их по одному, печатает символ прогресса,
// накапливает Collection и завершает прогон, когда каждый идентификатор
// из ожидаемой работы отмечен завершённым.
//
// # Ключевые компоненты
//
// ## Server
//
//	srv := sink.New(sink.Config{
//	    Transport: transport,
//	    Expected:  expected,
//	    Logger:    logger,
//	})
//
//	outcome, err := srv.Run(ctx)
//
// Состояния: Listening → Draining (отмена) → Summarizing → Terminated.
// Отмена ctx (например, SIGINT через signal.NotifyContext) или Sentinel,
// пришедший в sink, переводит Server в Draining: Sentinel рассылается в die,
// затем печатается частичная сводка с пометкой Interrupted. При обычном
// завершении Sentinel тоже рассылается — воркеры выходят по нему.
//
// ## Client
//
// Fire-and-forget отправитель на стороне воркера. Ошибки отправки
// возвращаются вызывающему, повторов нет.
//
// ## Collection
//
// Накопитель прогона: шаги в порядке получения и завершённые сценарии.
// Повторное завершение одного сценария идемпотентно.
//
// # Ошибки
//
//   - Bind sink/die не удался — Run возвращает ошибку, процесс завершается.
//   - Битый конверт или неизвестный вариант — логируется и пропускается.
//   - sink закрылся посреди прогона — частичная сводка и ErrSinkClosed.
//   - Работа так и не завершилась — Run ждёт; StallTimeout только
//     предупреждает в лог.
package sink
