// Package worker выполняет часть cucumber-набора и стримит результаты в sink.
//
// # Обзор
//
// Каждый воркер получает непересекающуюся часть feature-файлов (см. plan.Split)
// и выполняет их по одному через godog. Reporter подключается к godog как
// formatter "flatware" и отправляет в sink результат каждого шага сразу
// после его выполнения, включая пропущенные, а после последнего шага
// сценария — отметку о его завершении.
//
// Между единицами работы воркер ждёт через fireable.UntilFired: как только
// агрегатор рассылает Sentinel, воркер выходит, не начиная следующую единицу.
//
//	w := worker.New(worker.Config{
//	    Transport:   transport,
//	    Features:    slice,
//	    Initializer: InitializeScenario,
//	    Logger:      logger,
//	})
//
//	report, err := w.Run(ctx)
//
// # Идентификатор сценария
//
// domain.ScenarioID(uri, name) = "uri:name". Тот же идентификатор строит
// plan.Discover, поэтому ожидаемая работа агрегатора и отметки воркеров
// совпадают.
//
// # Ошибки
//
// Ошибка отправки не прерывает прогон: она логируется, агрегатор просто
// не увидит этот результат.
package worker
